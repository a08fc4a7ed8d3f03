// Copyright © 2024 The rsresolve authors

// Package lsp implements a Language Server Protocol server for Rust name
// resolution. It provides diagnostics, hover, go-to-definition, references,
// document highlights, document and workspace symbols, rename, folding,
// signature help, semantic tokens and call hierarchy.
package lsp

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/cargo"
	"github.com/luthersystems/rsresolve/lint"
)

const (
	serverName  = "rsresolve-lsp"
	tracerName  = "rsresolve/lsp"
	lintSource  = "rsresolve-lint"
	parseSource = "rsresolve"

	// DefaultDebounce is how long didChange waits for more edits before
	// publishing diagnostics.
	DefaultDebounce = 300 * time.Millisecond
)

// Server is the rsresolve language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	rootURI  string
	rootPath string

	analysisCfg *analysis.Config
	analyzers   []*lint.Analyzer
	linter      *lint.Linter

	log    logrus.FieldLogger
	tracer trace.Tracer

	// Workspace symbol index, built on demand and rebuilt after the
	// watcher reports a change on disk.
	indexBuild sync.Mutex
	indexMu    sync.RWMutex
	index      []analysis.WorkspaceSymbol
	indexed    bool
	watch      bool
	watcher    *fsnotify.Watcher
	watchDone  chan struct{}

	debounceDelay time.Duration
	debounceMu    sync.Mutex
	debounce      map[string]*time.Timer

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithAnalysisConfig sets the configuration used to analyze documents.
func WithAnalysisConfig(cfg *analysis.Config) Option {
	return func(s *Server) { s.analysisCfg = cfg }
}

// WithAnalyzers replaces the lint checks published as diagnostics.
func WithAnalyzers(analyzers []*lint.Analyzer) Option {
	return func(s *Server) { s.analyzers = analyzers }
}

// WithLogger sets the logger. The default is the standard logrus logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// WithTracerProvider sets the provider of the tracer that records a span
// for every request. The default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) { s.tracer = tp.Tracer(tracerName) }
}

// WithWatch enables or disables watching the workspace for changes on
// disk. It is enabled by default.
func WithWatch(enabled bool) Option {
	return func(s *Server) { s.watch = enabled }
}

// WithDebounce sets the delay between the last didChange and publishing
// diagnostics.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.debounceDelay = d
		}
	}
}

// New creates a new language server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:          NewDocumentStore(),
		analysisCfg:   &analysis.Config{},
		analyzers:     lint.DefaultAnalyzers(),
		log:           logrus.StandardLogger(),
		debounceDelay: DefaultDebounce,
		debounce:      make(map[string]*time.Timer),
		exitFn:        os.Exit,
		watch:         true,
	}
	for _, o := range opts {
		o(s)
	}
	if s.tracer == nil {
		s.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	s.linter = &lint.Linter{Analyzers: s.analyzers, Config: s.analysisCfg}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:                s.textDocumentHover,
		TextDocumentDefinition:           s.textDocumentDefinition,
		TextDocumentReferences:           s.textDocumentReferences,
		TextDocumentDocumentHighlight:    s.textDocumentDocumentHighlight,
		TextDocumentDocumentSymbol:       s.textDocumentDocumentSymbol,
		TextDocumentRename:               s.textDocumentRename,
		TextDocumentPrepareRename:        s.textDocumentPrepareRename,
		TextDocumentSignatureHelp:        s.textDocumentSignatureHelp,
		TextDocumentCodeAction:           s.textDocumentCodeAction,
		TextDocumentFoldingRange:         s.textDocumentFoldingRange,
		TextDocumentSemanticTokensFull:   s.textDocumentSemanticTokensFull,
		TextDocumentPrepareCallHierarchy: s.textDocumentPrepareCallHierarchy,
		CallHierarchyIncomingCalls:       s.callHierarchyIncomingCalls,
		CallHierarchyOutgoingCalls:       s.callHierarchyOutgoingCalls,
		WorkspaceSymbol:                  s.workspaceSymbol,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}
	s.log.WithField("root", s.rootPath).Info("initialize")
	s.loadManifest()

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	// Completion variants are not implemented, so completion is not
	// advertised.
	capabilities.CompletionProvider = nil

	capabilities.RenameProvider = &protocol.RenameOptions{
		PrepareProvider: boolPtr(true),
	}

	capabilities.SignatureHelpProvider = &protocol.SignatureHelpOptions{
		TriggerCharacters:   []string{"(", ","},
		RetriggerCharacters: []string{","},
	}

	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: semanticTokenLegend(),
		Full:   true,
	}

	quickFix := []protocol.CodeActionKind{protocol.CodeActionKindQuickFix}
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{CodeActionKinds: quickFix}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.captureNotify(ctx)
	if s.watch && s.rootPath != "" {
		if err := s.watchWorkspace(); err != nil {
			s.log.WithError(err).WithField("root", s.rootPath).Warn("cannot watch workspace")
		}
	}
	go s.ensureWorkspaceIndex()
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()
	s.stopWatching()
	s.log.Info("shutdown")
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// ensureWorkspaceIndex builds the workspace symbol index unless it is
// current. It is safe to call from any goroutine.
func (s *Server) ensureWorkspaceIndex() {
	s.indexBuild.Lock()
	defer s.indexBuild.Unlock()
	s.indexMu.RLock()
	current := s.indexed
	s.indexMu.RUnlock()
	if current || s.rootPath == "" {
		return
	}

	start := time.Now()
	syms, err := analysis.ScanWorkspace(s.context(), s.rootPath, runtime.NumCPU())
	if err != nil {
		s.log.WithError(err).WithField("root", s.rootPath).Warn("workspace scan failed")
		return
	}
	s.indexMu.Lock()
	s.index = syms
	s.indexed = true
	s.indexMu.Unlock()
	s.log.WithFields(logrus.Fields{
		"root":    s.rootPath,
		"symbols": len(syms),
		"elapsed": time.Since(start),
	}).Debug("workspace indexed")
}

// invalidateIndex marks the workspace index stale. The next workspace
// symbol request rebuilds it.
func (s *Server) invalidateIndex() {
	s.indexMu.Lock()
	s.indexed = false
	s.indexMu.Unlock()
}

// loadManifest adds the dependencies of the workspace's Cargo.toml to the
// external crates.
func (s *Server) loadManifest() {
	if s.rootPath == "" {
		return
	}
	path, err := cargo.Find(s.rootPath)
	if err != nil {
		return
	}
	m, err := cargo.Load(path)
	if err != nil {
		s.log.WithError(err).Warn("ignoring manifest")
		return
	}
	s.analysisCfg.ExternalCrates = append(s.analysisCfg.ExternalCrates, m.ExternalCrates()...)
	s.log.WithFields(logrus.Fields{"manifest": path, "crates": len(m.Dependencies)}).Debug("loaded manifest")
}

// ensureAnalysis ensures the document has a current analysis result.
func (s *Server) ensureAnalysis(doc *Document) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.analysis != nil {
		return
	}
	doc.analyze(s.analysisCfg)
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	if ctx == nil {
		return
	}
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
