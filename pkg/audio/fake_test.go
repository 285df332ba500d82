package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type fakeVoice struct {
	loop    bool
	stopped atomic.Bool
}

func (v *fakeVoice) Stop() { v.stopped.Store(true) }

type fakeDevice struct {
	mu        sync.Mutex
	resumeErr error
	resumes   int
	voices    []*fakeVoice
}

func (d *fakeDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resumes++
	return d.resumeErr
}

func (d *fakeDevice) Play(pcm []byte, loop bool) (Voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v := &fakeVoice{loop: loop}
	d.voices = append(d.voices, v)
	return v, nil
}

func (d *fakeDevice) setResumeErr(err error) {
	d.mu.Lock()
	d.resumeErr = err
	d.mu.Unlock()
}

// loopVoices returns looping voices that have not been stopped.
func (d *fakeDevice) loopVoices() []*fakeVoice {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*fakeVoice
	for _, v := range d.voices {
		if v.loop && !v.stopped.Load() {
			out = append(out, v)
		}
	}
	return out
}

// plays returns the number of Play calls, including the unlock primer.
func (d *fakeDevice) plays() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.voices)
}

func opener(d *fakeDevice, opens *int32) Opener {
	return func(context.Context, Format) (Device, error) {
		if opens != nil {
			atomic.AddInt32(opens, 1)
		}
		return d, nil
	}
}

type countingFetcher struct {
	inner Fetcher
	calls atomic.Int32
	gate  chan struct{} // when non-nil, Fetch blocks until closed
}

func (f *countingFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.inner.Fetch(ctx, name)
}

var errBlocked = errors.New("autoplay blocked")

func unlockedLibrary(fetcher Fetcher) (*Library, *fakeDevice) {
	dev := &fakeDevice{}
	gate := NewGate(opener(dev, nil), DefaultFormat)
	gate.Unlock(context.Background())
	return NewLibrary(gate, fetcher), dev
}
