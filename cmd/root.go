// Copyright © 2024 The rsresolve authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/rsresolve/diagnostic"
	"github.com/luthersystems/rsresolve/lsp"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rsresolve",
	Short: "Resolve names in Rust source",
	Long: `rsresolve finds the declaration every name in a Rust file refers to,
working from syntax alone. It understands block scoping, let shadowing,
function and closure parameters, patterns, modules, use declarations and
enum variants, and it keeps working on code that does not compile yet.

Getting started:
  rsresolve def src/main.rs:12:9        Where is the name at line 12, column 9 declared?
  rsresolve refs src/main.rs:3:8        Every use of the declaration at 3:8
  rsresolve path src/lib.rs geo::Point  Resolve a path at file scope
  rsresolve scopes src/main.rs:12:9     The scopes enclosing a position
  rsresolve doc src/lib.rs geo::area    Signature and doc comment of an item
  rsresolve lint ./...                  Report unresolved and unused names
  rsresolve lsp                         Start the language server
  rsresolve repl src/main.rs            Explore a file interactively

Lines and columns are 1-based; columns count bytes.

Configuration is read from $HOME/.rsresolve.yaml (or --config) and from
environment variables prefixed with RSRESOLVE_, e.g. RSRESOLVE_LOG_LEVEL or
RSRESOLVE_LINT_CHECKS.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setupOutput()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(reportError(os.Stderr, err))
	}
}

// exitError ends the process with a specific code. A nil err exits without
// a message; the command already reported what went wrong.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// problemsFound exits with status 1 without a message.
func problemsFound() error {
	return &exitError{code: 1}
}

// notFound exits with status 1 after reporting a failed lookup.
func notFound(format string, args ...any) error {
	return &exitError{code: 1, err: fmt.Errorf(format, args...)}
}

// badInvocation exits with status 2: invalid flags, unreadable files.
func badInvocation(err error) error {
	return &exitError{code: 2, err: err}
}

// reportError prints err and returns the exit status for it.
func reportError(w io.Writer, err error) int {
	code := 1
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
		if ee.err == nil {
			return code
		}
	}
	fmt.Fprintf(w, "rsresolve: %v\n", err) //nolint:errcheck // best-effort error display
	return code
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rsresolve.yaml)")
	flags.String("color", "auto", `Control colored output: "auto", "always", or "never".`)
	flags.String("log-level", "warning", "Log level: trace, debug, info, warning or error.")
	flags.StringSlice("external-crates", nil,
		"Crates besides std, core and alloc whose paths are not reported as unresolved.")
	flags.Bool("cargo", true, "Treat the dependencies listed in the enclosing Cargo.toml as external crates.")

	for _, key := range []string{"color", "log-level", "external-crates", "cargo"} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
	viper.SetDefault("cargo", true)
	viper.SetDefault("lsp.debounce", lsp.DefaultDebounce)
	viper.SetDefault("lint.jobs", 0)

	rootCmd.AddCommand(
		newDefCommand(&defaultConfig),
		newRefsCommand(&defaultConfig),
		newPathCommand(&defaultConfig),
		newScopesCommand(&defaultConfig),
		newDocCommand(&defaultConfig),
		newInlineCommand(&defaultConfig),
		newReplCommand(&defaultConfig),
		LintCommand(),
		LSPCommand(),
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".rsresolve" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".rsresolve")
	}

	viper.SetEnvPrefix("RSRESOLVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	case cfgFile != "" || !errors.As(err, &notFound):
		log.WithError(err).Warn("cannot read config file")
	}
}

// setupOutput applies the log level and color settings.
func setupOutput() error {
	level, err := log.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return badInvocation(err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	color.NoColor = !colorMode().Enabled(os.Stdout)
	return nil
}

func colorMode() diagnostic.ColorMode {
	return diagnostic.ParseColorMode(viper.GetString("color"))
}
