// Copyright © 2024 The rsresolve authors

// Package analysis provides a whole-file semantic pass over Rust source.
//
// Analyze collects every declaration in a tree, resolves every reference
// with the resolve engine and classifies what could not be resolved. It is
// designed to be used by lint analyzers and the language server, which
// both need the same per-file facts.
package analysis

import (
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// Config controls the behavior of the analyzer.
type Config struct {
	// Engine resolves references. When nil resolve.Default is used.
	Engine *resolve.Engine

	// ExternalCrates names crates whose paths are reported as external
	// rather than unresolved, in addition to std, core and alloc.
	ExternalCrates []string
}

// Result holds the output of semantic analysis.
type Result struct {
	Tree       *syntax.Tree
	Symbols    []*Symbol
	References []*Reference
	Unresolved []*UnresolvedRef

	symbols map[resolve.Decl]*Symbol
}

// Analyze performs semantic analysis on a parsed file.
func Analyze(tree *syntax.Tree, cfg *Config) *Result {
	if cfg == nil {
		cfg = &Config{}
	}
	engine := cfg.Engine
	if engine == nil {
		engine = resolve.Default()
	}
	a := &analyzer{
		engine:  engine,
		externs: externalRoots(cfg.ExternalCrates),
		classes: make(map[syntax.Node]classification),
		result: &Result{
			Tree:    tree,
			symbols: make(map[resolve.Decl]*Symbol),
		},
	}

	// Phase 1: every declaration of every scope
	a.collectSymbols(tree.Root())

	// Phase 2: every reference, resolved
	a.collectReferences(tree.Root())

	return a.result
}
