package backgrounds

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadDebounce collapses bursts of file events into one reload.
const ReloadDebounce = 200 * time.Millisecond

// Catalog holds the current manifest and reloads it when the file changes.
type Catalog struct {
	path   string
	logger zerolog.Logger

	mu      sync.RWMutex
	items   []Item
	subs    map[int]func([]Item)
	nextSub int

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCatalog creates an empty catalog for the manifest at path.
func NewCatalog(path string) *Catalog {
	return &Catalog{
		path:   path,
		logger: logging.WithComponent("backgrounds").With().Str("path", path).Logger(),
		subs:   make(map[int]func([]Item)),
	}
}

// Load reads the manifest. A missing file leaves the catalog empty.
func (c *Catalog) Load() error {
	items, err := Read(c.path)
	if errors.Is(err, os.ErrNotExist) {
		items, err = []Item{}, nil
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.items = items
	subs := make([]func([]Item), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	c.logger.Debug().Int("items", len(items)).Msg("background manifest loaded")
	for _, fn := range subs {
		fn(c.Items())
	}
	return nil
}

// Items returns a copy of the current entries.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.items...)
}

// Find returns the entry whose key or video source matches.
func (c *Catalog) Find(keyOrSrc string) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.Key == keyOrSrc || it.VideoSrc == keyOrSrc {
			return it, true
		}
	}
	return Item{}, false
}

// Sources lists every video source, for prefetching.
func (c *Catalog) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	srcs := make([]string, len(c.items))
	for i, it := range c.items {
		srcs[i] = it.VideoSrc
	}
	return srcs
}

// Resolve maps a stored background to its catalog entry, falling back to the bare selection.
func (c *Catalog) Resolve(bg models.Background) Item {
	if it, ok := c.Find(bg.Src); ok {
		return it
	}
	return Item{Label: bg.Label, VideoSrc: bg.Src, ThumbSrc: bg.Thumb}
}

// Subscribe calls fn after every successful reload. The returned func unsubscribes.
func (c *Catalog) Subscribe(fn func([]Item)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Watch reloads the catalog whenever the manifest is written, created or
// renamed into place. It watches the parent directory so atomic replaces are
// seen. Watching stops when ctx is cancelled or Close is called.
func (c *Catalog) Watch(ctx context.Context) error {
	c.watchMu.Lock()
	defer c.watchMu.Unlock()
	if c.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch manifest dir: %w", err)
	}

	c.watcher = watcher
	c.done = make(chan struct{})
	go c.watchLoop(ctx, watcher, c.done)
	c.logger.Debug().Msg("watching background manifest")
	return nil
}

func (c *Catalog) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer watcher.Close()

	var debounce *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	target := filepath.Clean(c.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(ReloadDebounce)
			} else {
				debounce.Reset(ReloadDebounce)
			}
			debounceC = debounce.C

		case <-debounceC:
			debounceC = nil
			if err := c.Load(); err != nil {
				c.logger.Error().Err(err).Msg("background manifest reload failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.logger.Error().Err(err).Msg("background manifest watcher error")
		}
	}
}

// Close stops watching and waits for the watch goroutine to exit.
func (c *Catalog) Close() {
	c.watchMu.Lock()
	watcher, done := c.watcher, c.done
	c.watcher, c.done = nil, nil
	c.watchMu.Unlock()

	if watcher == nil {
		return
	}
	_ = watcher.Close()
	<-done
}
