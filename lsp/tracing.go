// Copyright © 2024 The rsresolve authors

package lsp

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// context returns the parent context of request spans. glsp handlers do
// not carry one.
func (s *Server) context() context.Context {
	return context.Background()
}

// startSpan starts the span of a request about a document. pos may be nil.
func (s *Server) startSpan(method, uri string, pos *protocol.Position) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("lsp.method", method),
		semconv.CodeFilepath(uriToPath(uri)),
	}
	if pos != nil {
		attrs = append(attrs,
			semconv.CodeLineNumber(int(pos.Line)+1),
			semconv.CodeColumn(int(pos.Character)+1),
		)
	}
	return s.tracer.Start(s.context(), method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...))
}

// endSpan records the outcome of a request and ends its span.
func endSpan(span trace.Span, found bool, err error) {
	span.SetAttributes(attribute.Bool("lsp.found", found))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
