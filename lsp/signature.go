// Copyright © 2024 The rsresolve authors

package lsp

import (
	"strings"
	"unicode/utf16"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// textDocumentSignatureHelp handles textDocument/signatureHelp requests.
// It finds the enclosing function call at the cursor position, resolves
// the called function, and returns parameter hints.
func (s *Server) textDocumentSignatureHelp(_ *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	_, span := s.startSpan("textDocument/signatureHelp", params.TextDocument.URI, &params.Position)
	tree, res, offset, ok := s.documentAt(params.TextDocument.URI, params.Position)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}
	call, args := enclosingCall(tree, offset)
	if call.IsNil() {
		endSpan(span, false, nil)
		return nil, nil
	}
	fn, ok := calledFunction(res, call)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}
	endSpan(span, true, nil)
	return buildSignatureHelp(fn, argIndex(args, offset)), nil
}

// enclosingCall returns the innermost call expression whose argument list
// contains offset, and that argument list.
func enclosingCall(tree *syntax.Tree, offset int) (call, args syntax.Node) {
	n := tree.NodeAt(offset)
	if n.IsNil() && offset > 0 {
		n = tree.NodeAt(offset - 1)
	}
	for ; !n.IsNil(); n = n.Parent() {
		if !n.Is(syntax.KindCallExpression) {
			continue
		}
		a := n.ChildByField("arguments")
		if a.IsNil() {
			continue
		}
		// Inside the parentheses, or at the end of an unclosed list.
		r := a.Range()
		closed := strings.HasSuffix(a.Text(), ")")
		if offset > r.Start && (offset < r.End || !closed && offset == r.End) {
			return n, a
		}
	}
	return syntax.Node{}, syntax.Node{}
}

// calledFunction resolves the function a call expression calls.
func calledFunction(res *analysis.Result, call syntax.Node) (resolve.Decl, bool) {
	fn := call.ChildByField("function")
	if fn.Is(syntax.KindGenericFunction) {
		fn = fn.ChildByField("function")
	}
	if !fn.Is(syntax.KindIdentifier, syntax.KindScopedIdentifier) {
		return resolve.Decl{}, false
	}
	ref := res.RefAt(fn.End() - 1)
	if ref == nil || ref.Kind != analysis.RefResolved || ref.Decl.Kind != resolve.DeclFunction {
		return resolve.Decl{}, false
	}
	return ref.Decl, true
}

// argIndex returns the 0-based index of the argument at offset: the number
// of commas between the arguments before it.
func argIndex(args syntax.Node, offset int) int {
	tree := args.Tree()
	idx, pos := 0, args.Start()+1
	for _, c := range args.Children() {
		if c.Start() >= offset {
			break
		}
		idx += strings.Count(tree.TextOf(syntax.TextRange{Start: pos, End: c.Start()}), ",")
		pos = c.End()
	}
	if pos < offset {
		idx += strings.Count(tree.TextOf(syntax.TextRange{Start: pos, End: offset}), ",")
	}
	return idx
}

// functionParams returns the parameter nodes of a function item.
func functionParams(fn syntax.Node) []syntax.Node {
	var out []syntax.Node
	for _, p := range fn.ChildByField("parameters").Children() {
		if p.Is(syntax.KindParameter, syntax.KindSelfParameter, syntax.KindVariadicParameter) {
			out = append(out, p)
		}
	}
	return out
}

// buildSignatureHelp constructs an LSP SignatureHelp for a function and
// the active argument index.
func buildSignatureHelp(fn resolve.Decl, activeParam int) *protocol.SignatureHelp {
	// Build the label: "fn name(a: A, b: B) -> R"
	var label strings.Builder
	label.WriteString("fn " + fn.Name + "(")

	var params []protocol.ParameterInformation
	for i, p := range functionParams(fn.Node) {
		if i > 0 {
			label.WriteString(", ")
		}
		text := astutil.CollapseSpace(p.Text())
		start := utf16Len(label.String())
		label.WriteString(text)
		params = append(params, protocol.ParameterInformation{
			Label: []protocol.UInteger{safeUint(start), safeUint(start + utf16Len(text))},
		})
	}
	label.WriteString(")")
	if ret := fn.Node.ChildByField("return_type"); !ret.IsNil() {
		label.WriteString(" -> " + astutil.CollapseSpace(ret.Text()))
	}

	// Clamp active parameter to valid range.
	ap := min(activeParam, len(params)-1)
	ap = max(ap, 0)
	active := safeUint(ap)

	sigInfo := protocol.SignatureInformation{
		Label:      label.String(),
		Parameters: params,
	}
	if doc := analysis.DocComment(fn.Node); doc != "" {
		sigInfo.Documentation = protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: doc,
		}
	}

	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{sigInfo},
		ActiveSignature: uintPtr(0),
		ActiveParameter: &active,
	}
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func uintPtr(v uint32) *uint32 {
	return &v
}
