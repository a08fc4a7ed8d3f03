// Copyright © 2024 The rsresolve authors

package testcrumb

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrumb_NilRecorder(t *testing.T) {
	c := New("nil")
	assert.NotPanics(t, func() { c.Hit(nil) })
}

func TestRecorder_Count(t *testing.T) {
	a := New("a")
	b := New("b")
	rec := NewRecorder()
	a.Hit(rec)
	a.Hit(rec)
	assert.Equal(t, 2, rec.Count(a))
	assert.False(t, rec.WasHit(b))

	rec.Reset()
	assert.Equal(t, 0, rec.Count(a))
}

func TestRecorder_Concurrent(t *testing.T) {
	c := New("concurrent")
	rec := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Hit(rec)
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, rec.Count(c))
}

func TestCheckHit(t *testing.T) {
	c := New("checked")
	CheckHit(t, func(rec *Recorder) {
		c.Hit(rec)
	}, c)

	ft := &fakeT{TB: t}
	CheckHit(ft, func(rec *Recorder) {}, c)
	assert.True(t, ft.failed, "missing crumb should fail the test")
}

type fakeT struct {
	testing.TB
	failed bool
}

func (f *fakeT) Helper() {}

func (f *fakeT) Errorf(string, ...any) { f.failed = true }
