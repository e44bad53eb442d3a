package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"autosonic/internal/audio"
)

// DefaultSettle is how long a dropped file must stay quiet before it is
// picked up.
const DefaultSettle = 300 * time.Millisecond

// Selector receives settled audio files.
type Selector interface {
	SelectFile(path string) error
}

// Watcher turns audio files dropped into a directory into the active
// payload. Bursts collapse to the last file written.
type Watcher struct {
	dir      string
	selector Selector
	log      logger.Logger
	settle   time.Duration
}

func New(dir string, selector Selector, log logger.Logger, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:      strings.TrimSpace(dir),
		selector: selector,
		log:      log,
		settle:   settle,
	}
}

// Enabled reports whether a directory was configured.
func (w *Watcher) Enabled() bool {
	return w.dir != ""
}

// Start watches the directory until ctx is done. It is a no-op when no
// directory is configured.
func (w *Watcher) Start(ctx context.Context) error {
	if !w.Enabled() {
		w.log.Debug("drop folder disabled")
		return nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create drop folder: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	var (
		mu      sync.Mutex
		pending string
	)
	debounced := debounce.New(w.settle)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !accepts(evt) {
					continue
				}
				mu.Lock()
				pending = evt.Name
				mu.Unlock()
				debounced(func() {
					if ctx.Err() != nil {
						return
					}
					mu.Lock()
					path := pending
					mu.Unlock()
					w.pick(path)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.log.Warning(fmt.Sprintf("drop folder watcher error: %v", err))
			}
		}
	}()

	w.log.Info(fmt.Sprintf("watching drop folder %s", w.dir))
	return nil
}

func (w *Watcher) pick(path string) {
	if err := w.selector.SelectFile(path); err != nil {
		w.log.Warning(fmt.Sprintf("drop folder could not select %s: %v", path, err))
		return
	}
	w.log.Info(fmt.Sprintf("selected dropped file %s", filepath.Base(path)))
}

func accepts(evt fsnotify.Event) bool {
	if evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	if strings.HasPrefix(filepath.Base(evt.Name), ".") {
		return false
	}
	return audio.IsAudioFile(evt.Name)
}
