/*
DESCRIPTION
  watch.go wraps fsnotify to support hot-reloading the configuration
  archive: callers that want to pick up edits made while the process is
  running call Watch and receive the freshly reloaded Archive (or the
  load error) on every write to the file.
*/

package config

import (
	"io"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watch starts watching path for writes and invokes onChange with the
// freshly reloaded Archive (or the Load error) after each one. The
// returned io.Closer stops the watch; callers must close it to release
// the underlying inotify/kqueue handle. onChange is invoked on the
// watcher's own goroutine and must not block indefinitely.
func Watch(path string, onChange func(*Archive, error)) (io.Closer, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "config: creating watcher")
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "config: watching %q", path)
	}

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				a, err := Load(path)
				onChange(a, err)
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w, nil
}
