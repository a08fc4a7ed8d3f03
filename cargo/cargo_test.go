// Copyright © 2024 The rsresolve authors

package cargo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const packageManifest = `
[package]
name = "geo-tools"
version = "0.1.0"

[dependencies]
serde = { version = "1", features = ["derive"] }
rand = "0.8"
my-json = { package = "serde_json", version = "1" }

[dev-dependencies]
proptest = "1"

[build-dependencies]
cc = "1"

[target.'cfg(unix)'.dependencies]
libc = "0.2"
`

func TestParse(t *testing.T) {
	m, err := Parse("Cargo.toml", []byte(packageManifest))
	require.NoError(t, err)
	assert.Equal(t, "Cargo.toml", m.Path)
	assert.Equal(t, "geo_tools", m.Name)
	assert.Equal(t, []string{"cc", "libc", "my_json", "proptest", "rand", "serde"}, m.Dependencies)
	assert.Equal(t, []string{"geo_tools", "cc", "libc", "my_json", "proptest", "rand", "serde"}, m.ExternalCrates())
}

func TestParse_LibName(t *testing.T) {
	m, err := Parse("Cargo.toml", []byte("[package]\nname = \"geo-tools\"\n[lib]\nname = \"geo\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "geo", m.Name)
	assert.Empty(t, m.Dependencies)
}

func TestParse_Workspace(t *testing.T) {
	src := "[workspace]\nmembers = [\"a\", \"b\"]\n\n[workspace.dependencies]\ntokio = \"1\"\n"
	m, err := Parse("Cargo.toml", []byte(src))
	require.NoError(t, err)
	assert.Empty(t, m.Name)
	assert.Equal(t, []string{"tokio"}, m.ExternalCrates())
}

func TestParse_Error(t *testing.T) {
	_, err := Parse("bad/Cargo.toml", []byte("[package\nname ="))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad/Cargo.toml")
}

func TestFindForFile(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, ManifestName)
	require.NoError(t, os.WriteFile(manifest, []byte(packageManifest), 0o600))
	src := filepath.Join(root, "src", "bin")
	require.NoError(t, os.MkdirAll(src, 0o755))

	found, err := Find(src)
	require.NoError(t, err)
	assert.Equal(t, manifest, found)

	m, err := ForFile(filepath.Join(src, "tool.rs"))
	require.NoError(t, err)
	assert.Equal(t, "geo_tools", m.Name)
}

func TestFind_None(t *testing.T) {
	dir := t.TempDir()
	_, err := Find(dir)
	// A manifest above the temp dir would be found first; only check the
	// error when there is none.
	if err != nil {
		assert.ErrorIs(t, err, ErrNoManifest)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ManifestName))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCrateName(t *testing.T) {
	assert.Equal(t, "serde_json", CrateName("serde-json"))
	assert.Equal(t, "rand", CrateName(" rand "))
}
