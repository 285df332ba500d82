// Package audio gates sound output behind a first user gesture and plays
// cached sound assets as one-shots or keyed loops.
package audio

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/borgmon/reminder-clock/pkg/metrics"
	"github.com/rs/zerolog"
)

// Gate tracks whether playback is permitted for this session.
// It starts Locked and moves to Unlocked exactly once; there is no way back.
type Gate struct {
	open   Opener
	format Format
	logger zerolog.Logger

	unlocked atomic.Bool

	// mu serialises unlock attempts and the lazy device construction.
	mu     sync.Mutex
	device Device
}

// NewGate creates a locked gate. The device is not opened until the first unlock attempt.
func NewGate(open Opener, format Format) *Gate {
	if open == nil {
		open = OpenOto
	}
	if format.SampleRate == 0 || format.Channels == 0 {
		format = DefaultFormat
	}
	return &Gate{
		open:   open,
		format: format,
		logger: logging.WithComponent("audio.gate"),
	}
}

// Format returns the output format every asset is decoded into.
func (g *Gate) Format() Format { return g.format }

// IsUnlocked reports the current state without side effects.
func (g *Gate) IsUnlocked() bool { return g.unlocked.Load() }

// Device returns the shared output device once the gate is unlocked.
func (g *Gate) Device() (Device, bool) {
	if !g.unlocked.Load() {
		return nil, false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.device, g.device != nil
}

// Unlock opens the device if needed, resumes it and plays an inaudible primer.
// It must be called from within a user gesture. Failures leave the gate locked
// so the next gesture can retry. Safe to call repeatedly.
func (g *Gate) Unlock(ctx context.Context) bool {
	if g.unlocked.Load() {
		return true
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unlocked.Load() {
		return true
	}

	if g.device == nil {
		d, err := g.open(ctx, g.format)
		if err != nil {
			g.logger.Debug().Err(err).Msg("open audio device")
			return false
		}
		g.device = d
	}

	if err := g.device.Resume(); err != nil {
		g.logger.Debug().Err(err).Msg("resume audio device")
		return false
	}

	primer := make([]byte, g.format.BytesPerFrame())
	if _, err := g.device.Play(primer, false); err != nil {
		g.logger.Debug().Err(err).Msg("play unlock primer")
		return false
	}

	g.unlocked.Store(true)
	metrics.AudioUnlocked.Set(1)
	g.logger.Info().Msg("audio unlocked")
	return true
}

// InstallAutoUnlock listens for the first gesture of any UnlockKinds on src.
// Handlers run on the emitting goroutine. After the first successful unlock
// every listener is removed, including those that did not trigger it; after
// a failure they all stay registered. The returned func removes them early.
func (g *Gate) InstallAutoUnlock(ctx context.Context, src InteractionSource) (uninstall func()) {
	var (
		mu      sync.Mutex
		removes []func()
		once    sync.Once
	)
	removeAll := func() {
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			for _, remove := range removes {
				remove()
			}
			removes = nil
		})
	}

	handler := func() {
		if !g.Unlock(ctx) {
			return
		}
		removeAll()
	}

	mu.Lock()
	for _, kind := range UnlockKinds {
		removes = append(removes, src.On(kind, handler))
	}
	mu.Unlock()

	return removeAll
}
