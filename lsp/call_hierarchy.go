// Copyright © 2024 The rsresolve authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// callHierarchyData is stored in CallHierarchyItem.Data to carry context
// between prepare and incoming/outgoing calls requests.
type callHierarchyData struct {
	Name   string `json:"name"`
	URI    string `json:"uri"`
	Offset int    `json:"offset"` // byte offset of the function name
}

// textDocumentPrepareCallHierarchy handles the textDocument/prepareCallHierarchy request.
func (s *Server) textDocumentPrepareCallHierarchy(_ *glsp.Context, params *protocol.CallHierarchyPrepareParams) ([]protocol.CallHierarchyItem, error) {
	_, span := s.startSpan("textDocument/prepareCallHierarchy", params.TextDocument.URI, &params.Position)
	_, res, offset, ok := s.documentAt(params.TextDocument.URI, params.Position)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}
	d, ok := res.DeclAt(offset)
	// Only functions have a call hierarchy.
	if !ok || d.Kind != resolve.DeclFunction || d.NameNode.IsNil() {
		endSpan(span, false, nil)
		return nil, nil
	}
	endSpan(span, true, nil)
	return []protocol.CallHierarchyItem{callHierarchyItem(d, params.TextDocument.URI)}, nil
}

// callHierarchyIncomingCalls handles the callHierarchy/incomingCalls request.
// It finds all functions that call the target function.
func (s *Server) callHierarchyIncomingCalls(_ *glsp.Context, params *protocol.CallHierarchyIncomingCallsParams) ([]protocol.CallHierarchyIncomingCall, error) {
	_, span := s.startSpan("callHierarchy/incomingCalls", params.Item.URI, nil)
	tree, res, target, ok := s.callTarget(params.Item.Data)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}

	// Group references to the target by enclosing function, in order of
	// first call.
	var (
		order   []resolve.Decl
		callers = make(map[resolve.Decl][]protocol.Range)
	)
	for _, ref := range res.RefsTo(target) {
		caller, ok := enclosingFunction(res, ref.Ref.Node())
		if !ok {
			continue // reference is outside any function
		}
		if _, seen := callers[caller]; !seen {
			order = append(order, caller)
		}
		callers[caller] = append(callers[caller], toLSPRange(tree, ref.Range()))
	}

	data := decodeCallHierarchyData(params.Item.Data)
	var result []protocol.CallHierarchyIncomingCall
	for _, caller := range order {
		result = append(result, protocol.CallHierarchyIncomingCall{
			From:       callHierarchyItem(caller, data.URI),
			FromRanges: callers[caller],
		})
	}
	endSpan(span, len(result) > 0, nil)
	return result, nil
}

// callHierarchyOutgoingCalls handles the callHierarchy/outgoingCalls request.
// It finds all functions called from within the target function.
func (s *Server) callHierarchyOutgoingCalls(_ *glsp.Context, params *protocol.CallHierarchyOutgoingCallsParams) ([]protocol.CallHierarchyOutgoingCall, error) {
	_, span := s.startSpan("callHierarchy/outgoingCalls", params.Item.URI, nil)
	tree, res, target, ok := s.callTarget(params.Item.Data)
	if !ok {
		endSpan(span, false, nil)
		return nil, nil
	}

	var (
		order   []resolve.Decl
		callees = make(map[resolve.Decl][]protocol.Range)
	)
	body := target.Node.Range()
	for _, ref := range res.References {
		if ref.Kind != analysis.RefResolved || ref.Decl.Kind != resolve.DeclFunction {
			continue
		}
		if !body.Covers(ref.Range()) || ref.Decl == target {
			continue
		}
		// Calls made by nested functions belong to them.
		if caller, ok := enclosingFunction(res, ref.Ref.Node()); !ok || caller != target {
			continue
		}
		if _, seen := callees[ref.Decl]; !seen {
			order = append(order, ref.Decl)
		}
		callees[ref.Decl] = append(callees[ref.Decl], toLSPRange(tree, ref.Range()))
	}

	data := decodeCallHierarchyData(params.Item.Data)
	var result []protocol.CallHierarchyOutgoingCall
	for _, callee := range order {
		result = append(result, protocol.CallHierarchyOutgoingCall{
			To:         callHierarchyItem(callee, data.URI),
			FromRanges: callees[callee],
		})
	}
	endSpan(span, len(result) > 0, nil)
	return result, nil
}

// callTarget finds the function a call hierarchy item refers to.
func (s *Server) callTarget(raw any) (*syntax.Tree, *analysis.Result, resolve.Decl, bool) {
	data := decodeCallHierarchyData(raw)
	if data == nil {
		return nil, nil, resolve.Decl{}, false
	}
	tree, res, ok := s.document(data.URI)
	if !ok {
		return nil, nil, resolve.Decl{}, false
	}
	sym := res.SymbolAt(data.Offset)
	if sym == nil || sym.Kind != resolve.DeclFunction || sym.Name != data.Name {
		return nil, nil, resolve.Decl{}, false
	}
	return tree, res, sym.Decl, true
}

// enclosingFunction returns the function item whose body contains n.
func enclosingFunction(res *analysis.Result, n syntax.Node) (resolve.Decl, bool) {
	fn := n.Ancestor(syntax.KindFunctionItem)
	if fn.IsNil() {
		return resolve.Decl{}, false
	}
	sym := res.SymbolAt(fn.ChildByField("name").Start())
	if sym == nil || sym.Kind != resolve.DeclFunction {
		return resolve.Decl{}, false
	}
	return sym.Decl, true
}

// callHierarchyItem creates a CallHierarchyItem for a function.
func callHierarchyItem(fn resolve.Decl, uri string) protocol.CallHierarchyItem {
	tree := fn.Node.Tree()
	detail := analysis.Signature(fn)
	return protocol.CallHierarchyItem{
		Name:           fn.Name,
		Kind:           protocol.SymbolKindFunction,
		Detail:         &detail,
		URI:            uri,
		Range:          toLSPRange(tree, fn.Node.Range()),
		SelectionRange: toLSPRange(tree, fn.NameNode.Range()),
		Data: callHierarchyData{
			Name:   fn.Name,
			URI:    uri,
			Offset: fn.NameNode.Start(),
		},
	}
}

// decodeCallHierarchyData decodes the data field from a CallHierarchyItem.
// In tests the data arrives as a Go struct; over the wire it arrives as
// map[string]any from JSON deserialization.
func decodeCallHierarchyData(data any) *callHierarchyData {
	if data == nil {
		return nil
	}
	// Direct struct (in-process / test path).
	if d, ok := data.(callHierarchyData); ok {
		return &d
	}
	if d, ok := data.(*callHierarchyData); ok {
		return d
	}
	// JSON-deserialized path (over the wire).
	m, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	name, _ := m["name"].(string)
	uri, _ := m["uri"].(string)
	if name == "" || uri == "" {
		return nil
	}
	offset, _ := m["offset"].(float64)
	return &callHierarchyData{
		Name:   name,
		URI:    uri,
		Offset: int(offset),
	}
}
