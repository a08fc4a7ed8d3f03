// Copyright © 2024 The rsresolve authors

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/lint"
	"github.com/luthersystems/rsresolve/parser"
	"github.com/luthersystems/rsresolve/query"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

var (
	posColor   = color.New(color.Bold)
	kindColor  = color.New(color.FgCyan)
	nameColor  = color.New(color.FgGreen, color.Bold)
	faintColor = color.New(color.Faint)
)

// source is a parsed and analyzed file.
type source struct {
	path   string
	tree   *syntax.Tree
	res    *analysis.Result
	cfg    *analysis.Config
	engine *resolve.Engine
}

func loadSource(ctx context.Context, path string, cfg *analysis.Config) (*source, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return nil, err
	}
	tree, err := parser.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}
	res := analysis.Analyze(tree, cfg)
	log.WithFields(log.Fields{
		"file":       path,
		"symbols":    len(res.Symbols),
		"references": len(res.References),
		"unresolved": len(res.Unresolved),
	}).Debug("analyzed")
	engine := cfg.Engine
	if engine == nil {
		engine = resolve.Default()
	}
	return &source{path: path, tree: tree, res: res, cfg: cfg, engine: engine}, nil
}

// reload parses and analyzes the file again.
func (s *source) reload(ctx context.Context) error {
	fresh, err := loadSource(ctx, s.path, s.cfg)
	if err != nil {
		return err
	}
	*s = *fresh
	return nil
}

func (s *source) pos(offset int) lint.Position {
	return lint.PositionOf(s.tree, offset)
}

// offset converts a position-only query to a byte offset.
func (s *source) offset(q query.Query) (int, error) {
	if !q.HasPos() {
		return 0, fmt.Errorf("%s: want LINE:COL", q)
	}
	return q.Offset(s.tree)
}

// parseLocation splits a FILE:LINE:COL argument.
func parseLocation(arg string) (string, query.Query, error) {
	bad := fmt.Errorf("%q: want FILE:LINE:COL", arg)
	i := strings.LastIndex(arg, ":")
	if i <= 0 {
		return "", query.Query{}, bad
	}
	j := strings.LastIndex(arg[:i], ":")
	if j <= 0 {
		return "", query.Query{}, bad
	}
	q, err := query.Parse(arg[j+1:])
	if err != nil || q.HasPath() {
		return "", query.Query{}, bad
	}
	return arg[:j], q, nil
}

// loadLocation parses a FILE:LINE:COL argument and loads the file.
func loadLocation(cmd *cobra.Command, cfg *cmdConfig, arg string) (*source, int, error) {
	file, q, err := parseLocation(arg)
	if err != nil {
		return nil, 0, badInvocation(err)
	}
	src, err := loadSource(commandContext(cmd), file, cfg.analysisConfig(file))
	if err != nil {
		return nil, 0, badInvocation(err)
	}
	offset, err := src.offset(q)
	if err != nil {
		return nil, 0, badInvocation(fmt.Errorf("%s: %w", file, err))
	}
	return src, offset, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// declInfo is the printed form of a declaration.
type declInfo struct {
	Name      string        `json:"name"`
	Kind      string        `json:"kind"`
	Pos       lint.Position `json:"pos"`
	Signature string        `json:"signature,omitempty"`
	Doc       string        `json:"doc,omitempty"`
}

func (s *source) declInfo(d resolve.Decl) declInfo {
	at := d.NameNode
	if at.IsNil() {
		at = d.Node
	}
	return declInfo{
		Name:      d.Name,
		Kind:      d.Kind.String(),
		Pos:       s.pos(at.Start()),
		Signature: analysis.Signature(d),
		Doc:       analysis.DocComment(d.Node),
	}
}

func writeDecl(w io.Writer, info declInfo) {
	fmt.Fprintf(w, "%s: %s %s\n", posColor.Sprint(info.Pos), kindColor.Sprint(info.Kind), //nolint:errcheck
		nameColor.Sprintf("`%s`", info.Name))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
