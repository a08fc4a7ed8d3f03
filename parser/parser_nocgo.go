// Copyright © 2024 The rsresolve authors

//go:build !cgo

package parser

import (
	"context"
	"fmt"

	"github.com/luthersystems/rsresolve/syntax"
)

// Parser parses Rust source.
type Parser struct{}

// New returns a Rust parser.
func New() *Parser { return &Parser{} }

// Parse always fails without cgo.
func Parse(ctx context.Context, filename string, src []byte) (*syntax.Tree, error) {
	return New().Parse(ctx, filename, src)
}

// Parse always fails without cgo.
func (p *Parser) Parse(_ context.Context, filename string, _ []byte) (*syntax.Tree, error) {
	return nil, fmt.Errorf("%s: %w", filename, ErrNoCgo)
}
