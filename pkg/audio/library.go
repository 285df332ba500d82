package audio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrLocked is returned by Load while the gate is still locked.
var ErrLocked = errors.New("audio is locked until the first user gesture")

// Asset is a decoded sound, ready for the output device.
type Asset struct {
	Name string
	PCM  []byte
}

// loop is a registration in the active-loop table. voice is nil while the
// asset is still loading.
type loop struct {
	sound string
	voice Voice
}

// Library loads, caches and plays sound assets. Playback is best effort:
// every failure is logged and dropped, never returned to the caller.
type Library struct {
	gate    *Gate
	fetcher Fetcher
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup
	loads  singleflight.Group

	mu     sync.Mutex
	cache  map[string]*Asset
	loops  map[string]*loop
	closed bool
}

// NewLibrary creates a library playing through gate's device.
func NewLibrary(gate *Gate, fetcher Fetcher) *Library {
	ctx, cancel := context.WithCancel(context.Background())
	return &Library{
		gate:    gate,
		fetcher: fetcher,
		logger:  logging.WithComponent("audio.library"),
		ctx:     ctx,
		cancel:  cancel,
		cache:   make(map[string]*Asset),
		loops:   make(map[string]*loop),
	}
}

// Load returns the decoded asset for name, fetching it on first use.
// Failures are not cached; concurrent loads of one name share a single fetch.
func (l *Library) Load(ctx context.Context, name string) (*Asset, error) {
	if !l.gate.IsUnlocked() {
		return nil, ErrLocked
	}

	l.mu.Lock()
	if a, ok := l.cache[name]; ok {
		l.mu.Unlock()
		return a, nil
	}
	l.mu.Unlock()

	v, err, _ := l.loads.Do(name, func() (any, error) {
		data, err := l.fetcher.Fetch(ctx, name)
		if err != nil {
			return nil, err
		}
		pcm, err := Decode(data, l.gate.Format())
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}

		asset := &Asset{Name: name, PCM: pcm}
		l.mu.Lock()
		l.cache[name] = asset
		metrics.SoundCacheEntries.Set(float64(len(l.cache)))
		l.mu.Unlock()
		return asset, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Asset), nil
}

// Cached reports whether name has been decoded and cached.
func (l *Library) Cached(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[name]
	return ok
}

// PlayOnce starts a non-looping instance of name in the background.
// It is a no-op while the gate is locked or after Close.
func (l *Library) PlayOnce(name string) {
	if !l.gate.IsUnlocked() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.spawnLocked(func(ctx context.Context) {
		asset, err := l.Load(ctx, name)
		if err != nil {
			l.fail("load", err, name)
			return
		}
		device, ok := l.gate.Device()
		if !ok {
			return
		}
		if _, err := device.Play(asset.PCM, false); err != nil {
			l.fail("play", err, name)
		}
	})
}

// PlayLoop starts a looping instance of name registered under id.
// A second call for an id that already has a loop, playing or still loading,
// is a no-op. The id is reserved before any I/O so back-to-back calls cannot
// both start audio. After Close it does nothing.
func (l *Library) PlayLoop(id, name string) {
	if !l.gate.IsUnlocked() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if _, exists := l.loops[id]; exists {
		return
	}
	reg := &loop{sound: name}
	l.loops[id] = reg
	metrics.AudioLoopsActive.Set(float64(len(l.loops)))

	l.spawnLocked(func(ctx context.Context) {
		asset, err := l.Load(ctx, name)
		if err != nil {
			l.fail("load", err, name)
			l.release(id, reg)
			return
		}

		device, ok := l.gate.Device()
		if !ok {
			l.release(id, reg)
			return
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.loops[id] != reg {
			// Stopped while loading.
			return
		}
		voice, err := device.Play(asset.PCM, true)
		if err != nil {
			l.fail("play", err, name)
			delete(l.loops, id)
			metrics.AudioLoopsActive.Set(float64(len(l.loops)))
			return
		}
		reg.voice = voice
	})
}

// StopLoop stops and unregisters the loop for id. Unknown ids are ignored.
func (l *Library) StopLoop(id string) {
	l.mu.Lock()
	reg, ok := l.loops[id]
	if ok {
		delete(l.loops, id)
		metrics.AudioLoopsActive.Set(float64(len(l.loops)))
	}
	l.mu.Unlock()

	if ok && reg.voice != nil {
		reg.voice.Stop()
	}
}

// HasLoop reports whether id currently has a loop registered.
func (l *Library) HasLoop(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.loops[id]
	return ok
}

// ActiveLoops returns the registered loop ids in sorted order.
func (l *Library) ActiveLoops() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.loops))
	for id := range l.loops {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Wait blocks until every detached playback task has finished.
func (l *Library) Wait() {
	l.tasks.Wait()
}

// Close cancels pending loads, stops all loops and waits for background tasks.
// Later PlayOnce and PlayLoop calls are ignored.
func (l *Library) Close() {
	l.mu.Lock()
	l.closed = true
	loops := l.loops
	l.loops = make(map[string]*loop)
	metrics.AudioLoopsActive.Set(0)
	l.mu.Unlock()
	l.cancel()

	for _, reg := range loops {
		if reg.voice != nil {
			reg.voice.Stop()
		}
	}
	l.tasks.Wait()
}

// spawnLocked runs fn detached. l.mu must be held and the library open, so
// no task is added once Close has started waiting.
func (l *Library) spawnLocked(fn func(ctx context.Context)) {
	l.tasks.Add(1)
	go func() {
		defer l.tasks.Done()
		fn(l.ctx)
	}()
}

// release drops reg if it is still the registration for id.
func (l *Library) release(id string, reg *loop) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loops[id] == reg {
		delete(l.loops, id)
		metrics.AudioLoopsActive.Set(float64(len(l.loops)))
	}
}

func (l *Library) fail(reason string, err error, name string) {
	metrics.PlaybackFailures.WithLabelValues(reason).Inc()
	l.logger.Debug().Err(err).Str("sound", name).Str("reason", reason).Msg("playback skipped")
}
