package cliutil

import (
	"github.com/fsnotify/fsnotify"
)

// ScriptWatcher re-runs a callback whenever a watched file changes,
// implementing `hemlock --watch <path>` (SPEC_FULL.md §6).
//
// Grounded on the teacher's FSNotifyWatcher (internal/runtime/vfs/
// watch_fsnotify.go): a single fsnotify.Watcher feeding a buffered event
// channel from a dedicated goroutine, simplified from vfs's generic
// multi-op Event/Watcher interface down to the one thing the CLI needs —
// "something changed, re-run".
type ScriptWatcher struct {
	w      *fsnotify.Watcher
	Events chan struct{}
	Errors chan error
}

func NewScriptWatcher(path string) (*ScriptWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	sw := &ScriptWatcher{w: w, Events: make(chan struct{}, 8), Errors: make(chan error, 1)}
	go sw.loop()
	return sw, nil
}

func (sw *ScriptWatcher) loop() {
	for {
		select {
		case ev, ok := <-sw.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				select {
				case sw.Events <- struct{}{}:
				default:
				}
			}
		case err, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			select {
			case sw.Errors <- err:
			default:
			}
		}
	}
}

func (sw *ScriptWatcher) Close() error { return sw.w.Close() }
