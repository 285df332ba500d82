package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Device is the shared audio output context.
type Device interface {
	// Resume restarts output if the device was suspended.
	Resume() error
	// Play starts pcm (in the device format) and returns immediately.
	Play(pcm []byte, loop bool) (Voice, error)
}

// Voice is a handle to one playback instance.
type Voice interface {
	Stop()
}

// Opener constructs the output device. It is called at most once per successful unlock.
type Opener func(ctx context.Context, f Format) (Device, error)

type otoDevice struct {
	ctx *oto.Context
}

// OpenOto creates the process-wide oto context and waits for the hardware to be ready.
// oto allows a single context per process, so the Gate calls this at most once.
func OpenOto(ctx context.Context, f Format) (Device, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("create audio context: %w", err)
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &otoDevice{ctx: otoCtx}, nil
}

func (d *otoDevice) Resume() error {
	if err := d.ctx.Err(); err != nil {
		return fmt.Errorf("audio context failed: %w", err)
	}
	return d.ctx.Resume()
}

func (d *otoDevice) Play(pcm []byte, loop bool) (Voice, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrUnsupportedFormat)
	}

	var src io.Reader = bytes.NewReader(pcm)
	if loop {
		src = &loopReader{data: pcm}
	}

	v := &otoVoice{
		player: d.ctx.NewPlayer(src),
		done:   make(chan struct{}),
	}
	v.player.Play()

	if !loop {
		go v.closeWhenDrained()
	}
	return v, nil
}

type otoVoice struct {
	player *oto.Player
	done   chan struct{}
	once   sync.Once
}

// closeWhenDrained releases a one-shot player once it runs out of data.
func (v *otoVoice) closeWhenDrained() {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for v.player.IsPlaying() {
		select {
		case <-v.done:
			return
		case <-ticker.C:
		}
	}
	v.Stop()
}

func (v *otoVoice) Stop() {
	v.once.Do(func() {
		close(v.done)
		v.player.Pause()
		_ = v.player.Close()
	})
}

// loopReader replays data forever; the player is stopped by closing it.
type loopReader struct {
	data []byte
	pos  int
}

func (r *loopReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		c := copy(p[n:], r.data[r.pos:])
		n += c
		r.pos = (r.pos + c) % len(r.data)
	}
	return n, nil
}
