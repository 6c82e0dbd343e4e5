// Package watch re-runs a build whenever source files change.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"forge/pkg/ctxlog"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher observes one directory for changes to files carrying the
// source extension and triggers a rebuild after a quiet period.
// Rebuilds never overlap: the loop is single-threaded, and events
// arriving during a build fold into the next one.
type Watcher struct {
	Dir string
	// Ext is the source extension events must match.
	Ext string
	// Debounce is the quiet period before a rebuild fires.
	Debounce time.Duration
	// Rebuild runs one build goal. Failures are logged, not fatal, so
	// the loop survives broken intermediate states of the sources.
	Rebuild func(ctx context.Context) error
}

// Run performs an initial rebuild, then watches until the context is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	log := ctxlog.FromContext(ctx)

	if err := w.Rebuild(ctx); err != nil {
		log.Warn("build failed", "error", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			log.Debug("source changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case <-timer.C:
			if err := w.Rebuild(ctx); err != nil {
				log.Warn("build failed", "error", err)
			}
		}
	}
}

// relevant reports whether an event concerns a source file. Artifact
// writes during a build would otherwise retrigger the loop forever.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, w.Ext) || strings.TrimSuffix(name, w.Ext) == "" {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
