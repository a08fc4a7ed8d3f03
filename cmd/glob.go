// Copyright © 2024 The rsresolve authors

package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/luthersystems/rsresolve/analysis"
)

// expandArgs expands arguments to the .rs files they name. A pattern ending
// with "/..." or a directory yields every .rs file below it, skipping target
// and hidden directories. Paths matching an exclude pattern are dropped.
func expandArgs(args []string, excludes []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		dir, recursive := strings.CutSuffix(arg, "/...")
		if recursive && dir == "" {
			dir = "."
		}
		if !recursive {
			if info, err := os.Stat(arg); err == nil && info.IsDir() {
				dir, recursive = arg, true
			}
		}
		if !recursive {
			out = append(out, arg)
			continue
		}
		files, err := findRustFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", arg, err)
		}
		out = append(out, files...)
	}
	return filterExcludes(out, excludes), nil
}

func findRustFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && analysis.SkipDir(d.Name()) {
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

// filterExcludes removes paths that match any exclude pattern.
func filterExcludes(paths, excludes []string) []string {
	if len(excludes) == 0 {
		return paths
	}
	out := paths[:0:0]
	for _, p := range paths {
		if !matchesAny(p, excludes) {
			out = append(out, p)
		}
	}
	return out
}

// matchesAny reports whether path matches a pattern as a whole, by its base
// name, or by any single directory component.
func matchesAny(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	parts := splitPath(path)
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, path); ok {
			return true
		}
		for _, part := range parts {
			if ok, _ := filepath.Match(pat, part); ok {
				return true
			}
		}
	}
	return false
}

// splitPath splits a slash-separated path into its non-empty components.
func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}
