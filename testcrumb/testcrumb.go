// Copyright © 2024 The rsresolve authors

// Package testcrumb connects code paths to the tests that exercise them.
//
// A Crumb is declared next to the branch it marks and hit there:
//
//	var crumbForwardRef = testcrumb.New("forward reference excluded")
//
//	if !visible {
//		crumbForwardRef.Hit(e.recorder)
//		continue
//	}
//
// Hits are only counted by a Recorder that the test owns and hands to the
// code under test. Production code passes a nil *Recorder, which makes Hit
// a no-op. There is no process-wide state, so tests may run in parallel.
//
// A test asserts the branch was taken with CheckHit:
//
//	testcrumb.CheckHit(t, func(rec *testcrumb.Recorder) {
//		e := resolve.NewEngine(resolve.WithRecorder(rec))
//		...
//	}, crumbForwardRef)
package testcrumb

import (
	"sync"
	"testing"
)

// Crumb marks a code path.
type Crumb struct {
	name string
}

// New returns a crumb with a descriptive name.
func New(name string) *Crumb {
	return &Crumb{name: name}
}

// Hit records that the marked path ran. r may be nil.
func (c *Crumb) Hit(r *Recorder) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.hits[c]++
	r.mu.Unlock()
}

func (c *Crumb) String() string { return c.name }

// Recorder counts crumb hits. It is safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	hits map[*Crumb]int
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{hits: make(map[*Crumb]int)}
}

// Count returns how many times c was hit.
func (r *Recorder) Count(c *Crumb) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[c]
}

// WasHit reports whether c was hit at least once.
func (r *Recorder) WasHit(c *Crumb) bool {
	return r.Count(c) > 0
}

// Reset forgets all hits.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.hits = make(map[*Crumb]int)
	r.mu.Unlock()
}

// CheckHit runs fn with a fresh recorder and fails the test for every crumb
// that fn did not hit.
func CheckHit(t testing.TB, fn func(rec *Recorder), crumbs ...*Crumb) {
	t.Helper()
	rec := NewRecorder()
	fn(rec)
	for _, c := range crumbs {
		if !rec.WasHit(c) {
			t.Errorf("testcrumb %q not hit", c)
		}
	}
}
