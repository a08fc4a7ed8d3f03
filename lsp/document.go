// Copyright © 2024 The rsresolve authors

package lsp

import (
	"context"
	"sync"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/parser"
	"github.com/luthersystems/rsresolve/syntax"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu       sync.Mutex
	URI      string
	Version  int32
	Content  string
	tree     *syntax.Tree
	analysis *analysis.Result
	parseErr error
}

// parse parses the document content. The parser recovers from syntax
// errors, so a tree is available unless the parser itself failed.
func (d *Document) parse() {
	tree, err := parser.Parse(context.Background(), uriToPath(d.URI), []byte(d.Content))
	d.tree = tree
	d.parseErr = err
	d.analysis = nil
}

// analyze runs semantic analysis on the parsed tree.
func (d *Document) analyze(cfg *analysis.Config) {
	if d.tree == nil {
		return
	}
	d.analysis = analysis.Analyze(d.tree, cfg)
}

// snapshot returns the tree and analysis of the document. Both are
// immutable and safe to use after the lock is released.
func (d *Document) snapshot() (*syntax.Tree, *analysis.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tree, d.analysis
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	doc.parse()
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and re-parses it.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.parse()
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns every open document.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	return docs
}
