// Copyright © 2024 The rsresolve authors

package lsp

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/luthersystems/rsresolve/analysis"
	"github.com/luthersystems/rsresolve/cargo"
)

// watchWorkspace starts watching every directory below the root. Changes
// to Rust files or manifests mark the workspace index stale.
func (s *Server) watchWorkspace() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := addWatchDirs(w, s.rootPath); err != nil {
		_ = w.Close()
		return err
	}
	done := make(chan struct{})
	s.indexMu.Lock()
	s.watcher, s.watchDone = w, done
	s.indexMu.Unlock()
	go func() {
		defer close(done)
		s.watchLoop(w)
	}()
	return nil
}

// addWatchDirs adds root and the directories below it, skipping the ones
// workspace scans skip.
func addWatchDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && analysis.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func (s *Server) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			s.handleFSEvent(w, ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.WithError(err).Warn("workspace watcher")
		}
	}
}

func (s *Server) handleFSEvent(w *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if analysis.SkipDir(filepath.Base(ev.Name)) {
				return
			}
			if err := addWatchDirs(w, ev.Name); err != nil {
				s.log.WithError(err).WithField("dir", ev.Name).Debug("cannot watch directory")
			}
			s.invalidateIndex()
			return
		}
	}
	if !watchedFile(ev.Name) || ev.Op == fsnotify.Chmod {
		return
	}
	s.log.WithFields(logrus.Fields{"file": ev.Name, "op": ev.Op.String()}).Debug("workspace changed")
	s.invalidateIndex()
}

// watchedFile reports whether a change to path affects the index.
func watchedFile(path string) bool {
	return filepath.Ext(path) == ".rs" || filepath.Base(path) == cargo.ManifestName
}

// stopWatching closes the watcher and waits for its loop to exit.
func (s *Server) stopWatching() {
	s.indexMu.Lock()
	w, done := s.watcher, s.watchDone
	s.watcher, s.watchDone = nil, nil
	s.indexMu.Unlock()
	if w == nil {
		return
	}
	_ = w.Close()
	<-done
}
