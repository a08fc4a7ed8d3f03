// Copyright © 2024 The rsresolve authors

package analysis

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/rsresolve/parser"
	"github.com/luthersystems/rsresolve/resolve"
	"github.com/luthersystems/rsresolve/syntax"
)

// WorkspaceSymbol is an item declared somewhere in a workspace.
type WorkspaceSymbol struct {
	Name string
	Kind resolve.DeclKind
	File string

	// Container is the module path of the item within its file, e.g.
	// "a::b" for an item of `mod a { mod b { ... } }`.
	Container string

	Range syntax.TextRange
	Line  int // 0-based
	Col   int // 0-based, UTF-16 units
}

// ScanWorkspace walks a directory tree, parsing all .rs files with up to
// jobs goroutines and extracting their items. It skips hidden directories
// and cargo's target directory.
//
// Files that fail to read are silently skipped (fault tolerant).
func ScanWorkspace(ctx context.Context, root string, jobs int) ([]WorkspaceSymbol, error) {
	files, err := rustFiles(root)
	if err != nil {
		return nil, err
	}
	if jobs < 1 {
		jobs = 1
	}
	var (
		mu  sync.Mutex
		out []WorkspaceSymbol
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, path := range files {
		g.Go(func() error {
			src, err := os.ReadFile(path) //#nosec G304
			if err != nil {
				return nil
			}
			tree, err := parser.Parse(gctx, path, src)
			if errors.Is(err, parser.ErrNoCgo) {
				return err
			}
			if err != nil {
				return nil
			}
			syms := FileSymbols(tree)
			mu.Lock()
			out = append(out, syms...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Range.Start < out[j].Range.Start
	})
	return out, nil
}

// FileSymbols returns the items of a file, nested modules included.
func FileSymbols(tree *syntax.Tree) []WorkspaceSymbol {
	var out []WorkspaceSymbol
	var visit func(s resolve.Scope, container []string)
	visit = func(s resolve.Scope, container []string) {
		for d := range resolve.Declarations(s) {
			switch d.Kind {
			case resolve.DeclImport, resolve.DeclGlob, resolve.DeclTypeParam:
				continue
			}
			if d.Kind.IsBinding() {
				continue
			}
			line, col := tree.UTF16Position(d.NameNode.Start())
			out = append(out, WorkspaceSymbol{
				Name:      d.Name,
				Kind:      d.Kind,
				File:      tree.Filename(),
				Container: strings.Join(container, "::"),
				Range:     d.NameNode.Range(),
				Line:      line,
				Col:       col,
			})
			if d.Kind == resolve.DeclModule && !d.Node.ChildByField("body").IsNil() {
				visit(resolve.ScopeFor(d.Node), append(container[:len(container):len(container)], d.Name))
			}
		}
	}
	visit(resolve.RootScope(tree.Root()), nil)
	return out
}

func rustFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if d.IsDir() {
			if path != root && SkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".rs" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// SkipDir reports whether a directory named name is left out of workspace
// walks: hidden directories (e.g. .git) and cargo build output, but not "."
// or "..".
func SkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	if len(name) > 0 && name[0] == '.' {
		return true
	}
	return name == "target"
}
