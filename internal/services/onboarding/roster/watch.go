package roster

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/louisbranch/onboarding.space/internal/services/onboarding/storage"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher re-syncs the roster whenever its file changes.
type Watcher struct {
	Path     string
	Store    storage.MentorStore
	Debounce time.Duration
	// Logf reports reload outcomes; nil discards them.
	Logf func(format string, args ...any)
	// OnSync, when set, observes every completed reload.
	OnSync func(SyncResult, error)
}

// Run watches the roster's directory until ctx is done. The directory is
// watched so atomic rename-on-save is observed.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.Store == nil {
		return fmt.Errorf("roster watcher is not configured")
	}
	path, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("resolve roster path: %w", err)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create roster watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch roster dir: %w", err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logf("roster watcher: %v", err)
		case <-timer.C:
			result, err := LoadAndSync(ctx, w.Store, path)
			if err != nil {
				w.logf("reload mentor roster: %v", err)
			} else {
				w.logf("reloaded mentor roster: %d mentors, %d removed", result.Upserted, result.Removed)
			}
			if w.OnSync != nil {
				w.OnSync(result, err)
			}
		}
	}
}

func (w *Watcher) logf(format string, args ...any) {
	if w.Logf != nil {
		w.Logf(format, args...)
	}
}
