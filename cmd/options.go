// Copyright © 2024 The rsresolve authors

package cmd

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/cargo"
	"github.com/luthersystems/rsresolve/lint"
	"github.com/luthersystems/rsresolve/resolve"
)

// Option configures an exported command factory (LintCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	engine         *resolve.Engine
	externalCrates []string
	analyzers      []*lint.Analyzer
}

// defaultConfig backs the commands registered on the root command.
var defaultConfig cmdConfig

// WithEngine sets the resolve engine used for analysis.
func WithEngine(e *resolve.Engine) Option {
	return func(c *cmdConfig) { c.engine = e }
}

// WithExternalCrates names crates whose paths are external rather than
// unresolved. Embedders pass the dependencies of the crate being checked.
// The names are added to those of the external-crates setting.
func WithExternalCrates(names ...string) Option {
	return func(c *cmdConfig) { c.externalCrates = append(c.externalCrates, names...) }
}

// WithAnalyzers adds checks to the default analyzers.
func WithAnalyzers(analyzers ...*lint.Analyzer) Option {
	return func(c *cmdConfig) { c.analyzers = append(c.analyzers, analyzers...) }
}

func newCmdConfig(opts []Option) *cmdConfig {
	cfg := &cmdConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// analysisConfig returns the analysis configuration for the given source
// files. Unless the cargo setting is off, the dependencies named by the
// Cargo.toml of each file's crate count as external crates.
func (c *cmdConfig) analysisConfig(paths ...string) *analysis.Config {
	crates := append([]string(nil), viper.GetStringSlice("external-crates")...)
	crates = append(crates, c.externalCrates...)
	if viper.GetBool("cargo") {
		crates = append(crates, manifestCrates(paths)...)
	}
	return &analysis.Config{
		Engine:         c.resolveEngine(),
		ExternalCrates: crates,
	}
}

// manifestCrates collects the external crates of the manifests enclosing
// paths.
func manifestCrates(paths []string) []string {
	var crates []string
	seen := make(map[string]bool)
	for _, p := range paths {
		path, err := cargo.Find(filepath.Dir(p))
		if err != nil || seen[path] {
			continue
		}
		seen[path] = true
		m, err := cargo.Load(path)
		if err != nil {
			log.WithError(err).Warn("ignoring manifest")
			continue
		}
		log.WithFields(log.Fields{"manifest": path, "crates": len(m.Dependencies)}).Debug("loaded manifest")
		crates = append(crates, m.ExternalCrates()...)
	}
	return crates
}

func (c *cmdConfig) resolveEngine() *resolve.Engine {
	if c.engine != nil {
		return c.engine
	}
	return resolve.Default()
}

func (c *cmdConfig) allAnalyzers() []*lint.Analyzer {
	return append(lint.DefaultAnalyzers(), c.analyzers...)
}
