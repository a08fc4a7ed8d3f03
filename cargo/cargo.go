// Copyright © 2024 The rsresolve authors

// Package cargo reads the parts of a Cargo manifest that name resolution
// needs: the crate's own name and the names its dependencies are imported
// under. Paths rooted in those crates are external to the file being
// analyzed rather than unresolved.
package cargo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file name of a Cargo manifest.
const ManifestName = "Cargo.toml"

// ErrNoManifest is returned when no manifest encloses a path.
var ErrNoManifest = errors.New("cargo: no " + ManifestName + " found")

// Manifest is the resolution-relevant content of a Cargo.toml.
type Manifest struct {
	// Path is the file the manifest was read from.
	Path string

	// Name is the crate name as written in source (hyphens become
	// underscores). Empty for a virtual workspace manifest.
	Name string

	// Dependencies are the names dependencies are imported under, sorted.
	Dependencies []string
}

type depTables struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`
}

type manifestFile struct {
	Dependencies      map[string]any `toml:"dependencies"`
	DevDependencies   map[string]any `toml:"dev-dependencies"`
	BuildDependencies map[string]any `toml:"build-dependencies"`

	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Lib struct {
		Name string `toml:"name"`
	} `toml:"lib"`
	Target    map[string]depTables `toml:"target"`
	Workspace struct {
		Dependencies map[string]any `toml:"dependencies"`
	} `toml:"workspace"`
}

// Parse decodes the manifest text data read from path.
func Parse(path string, data []byte) (*Manifest, error) {
	var f manifestFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m := &Manifest{Path: path, Name: CrateName(f.Package.Name)}
	if f.Lib.Name != "" {
		m.Name = CrateName(f.Lib.Name)
	}

	seen := make(map[string]bool)
	add := func(deps map[string]any) {
		for key := range deps {
			name := CrateName(key)
			if name != "" && !seen[name] {
				seen[name] = true
				m.Dependencies = append(m.Dependencies, name)
			}
		}
	}
	add(f.Dependencies)
	add(f.DevDependencies)
	add(f.BuildDependencies)
	for _, t := range f.Target {
		add(t.Dependencies)
		add(t.DevDependencies)
		add(t.BuildDependencies)
	}
	add(f.Workspace.Dependencies)
	sort.Strings(m.Dependencies)
	return m, nil
}

// Load reads and decodes the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // reads the user's manifest
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Find returns the path of the manifest nearest to dir, searching dir and
// then its parents.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, ManifestName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoManifest
		}
		dir = parent
	}
}

// ForFile loads the manifest of the crate a source file belongs to.
func ForFile(path string) (*Manifest, error) {
	manifest, err := Find(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return Load(manifest)
}

// ExternalCrates returns the crate names paths may start with besides
// std, core and alloc: the dependencies and, for binaries and tests of a
// library package, the package's own crate.
func (m *Manifest) ExternalCrates() []string {
	if m.Name == "" {
		return m.Dependencies
	}
	return append([]string{m.Name}, m.Dependencies...)
}

// CrateName converts a package name to the identifier source uses for it.
func CrateName(pkg string) string {
	return strings.ReplaceAll(strings.TrimSpace(pkg), "-", "_")
}
