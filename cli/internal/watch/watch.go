// Package watch monitors a directory for Office documents to analyze.
package watch

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/macrolabs/stompcheck/internal/debug"
)

// officeExtensions are the document types worth scanning.
var officeExtensions = map[string]bool{
	".doc": true, ".docm": true, ".docx": true, ".dot": true, ".dotm": true,
	".xls": true, ".xlsm": true, ".xlsb": true, ".xlt": true, ".xltm": true,
	".ppt": true, ".pptm": true, ".pps": true, ".ppsm": true,
	".bin": true, // a bare vbaProject.bin
}

const debounce = 500 * time.Millisecond

// Watcher invokes a callback for every Office document created or
// modified under a directory. Events for one file are debounced so a
// half-written document is not scanned on every chunk.
type Watcher struct {
	dir      string
	callback func(path string)
	watcher  *fsnotify.Watcher
	done     chan struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over dir.
func New(dir string, callback func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(abs); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}

	return &Watcher{
		dir:      abs,
		callback: callback,
		watcher:  fw,
		done:     make(chan struct{}),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Start runs the event loop until Stop is called.
func (w *Watcher) Start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if !officeExtensions[strings.ToLower(filepath.Ext(event.Name))] {
					continue
				}
				w.schedule(event.Name)

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				debug.Error("watch error", "err", err)

			case <-w.done:
				return
			}
		}
	}()
}

// schedule (re)arms the debounce timer for one file.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Reset(debounce)
		return
	}
	w.timers[path] = time.AfterFunc(debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.callback(path)
	})
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.watcher.Close()
}
