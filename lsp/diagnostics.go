// Copyright © 2024 The rsresolve authors

package lsp

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/astutil"
	"github.com/luthersystems/rsresolve/lint"
	"github.com/luthersystems/rsresolve/syntax"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version), // #nosec G115
		params.TextDocument.Text,
	)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version), // #nosec G115
		content,
	)

	if s.debounceDelay == 0 {
		s.analyzeAndPublish(doc)
		return nil
	}
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(s.debounceDelay, func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.WithField("uri", doc.URI).Errorf("analysis panic: %v", r)
			}
		}()
		if d := s.docs.Get(doc.URI); d != nil {
			s.analyzeAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.analyzeAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// analyzeAndPublish runs analysis and lint on a document and publishes
// the resulting diagnostics to the client.
func (s *Server) analyzeAndPublish(doc *Document) {
	s.ensureAnalysis(doc)
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: s.diagnostics(doc),
	})
}

// diagnostics computes the syntax and lint diagnostics of a document.
func (s *Server) diagnostics(doc *Document) []protocol.Diagnostic {
	doc.mu.Lock()
	tree, res, parseErr, uri := doc.tree, doc.analysis, doc.parseErr, doc.URI
	doc.mu.Unlock()

	diags := []protocol.Diagnostic{}
	if parseErr != nil {
		s.log.WithError(parseErr).WithField("uri", uri).Warn("parse failed")
		return append(diags, protocol.Diagnostic{
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   strPtr(parseSource),
			Message:  parseErr.Error(),
		})
	}
	if tree == nil {
		return diags
	}

	for _, n := range astutil.FindAll(tree.Root(), syntax.KindError) {
		diags = append(diags, protocol.Diagnostic{
			Range:    toLSPRange(tree, n.Range()),
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   strPtr(parseSource),
			Message:  "syntax error",
		})
	}

	lintDiags, err := s.linter.LintTree(tree, res)
	if err != nil {
		s.log.WithError(err).WithField("uri", uri).Warn("lint failed")
		return diags
	}
	for _, d := range lintDiags {
		diags = append(diags, convertLintDiagnostic(tree, d))
	}
	s.log.WithFields(logrus.Fields{
		"uri":         uri,
		"diagnostics": len(diags),
	}).Debug("publish diagnostics")
	return diags
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic.
func convertLintDiagnostic(tree *syntax.Tree, d lint.Diagnostic) protocol.Diagnostic {
	sev := mapLintSeverity(d.Severity)
	out := protocol.Diagnostic{
		Range:    toLSPRange(tree, d.Range),
		Severity: &sev,
		Source:   strPtr(lintSource),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  d.Message,
	}
	for _, note := range d.Notes {
		out.Message += "\n" + note
	}
	return out
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
