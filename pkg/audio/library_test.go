package audio

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestLibrary_LockedGateNeverFetches(t *testing.T) {
	fetcher := &countingFetcher{inner: ToneFetcher{}}
	gate := NewGate(opener(&fakeDevice{}, nil), DefaultFormat)
	lib := NewLibrary(gate, fetcher)
	defer lib.Close()

	_, err := lib.Load(context.Background(), "alarm")
	require.ErrorIs(t, err, ErrLocked)

	lib.PlayOnce("alarm")
	lib.PlayLoop("toast-1", "alarm")
	lib.Wait()

	assert.Zero(t, fetcher.calls.Load())
	assert.False(t, lib.HasLoop("toast-1"))
}

func TestLibrary_LoadCachesByName(t *testing.T) {
	fetcher := &countingFetcher{inner: ToneFetcher{}}
	lib, _ := unlockedLibrary(fetcher)
	defer lib.Close()

	first, err := lib.Load(context.Background(), "chime")
	require.NoError(t, err)
	second, err := lib.Load(context.Background(), "chime")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.EqualValues(t, 1, fetcher.calls.Load())
	assert.True(t, lib.Cached("chime"))
}

func TestLibrary_LoadFailureIsNotCached(t *testing.T) {
	dir := t.TempDir()
	fetcher := &countingFetcher{inner: DirFetcher{Dir: dir}}
	lib, _ := unlockedLibrary(fetcher)
	defer lib.Close()

	_, err := lib.Load(context.Background(), "bell")
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, lib.Cached("bell"))

	wav, err := ToneFetcher{}.Fetch(context.Background(), "chime")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bell.wav"), wav, 0o644))

	_, err = lib.Load(context.Background(), "bell")
	require.NoError(t, err)
	assert.EqualValues(t, 2, fetcher.calls.Load())
}

func TestLibrary_DecodeFailureIsSwallowedByPlayback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.wav"), []byte("not audio"), 0o644))
	lib, dev := unlockedLibrary(DirFetcher{Dir: dir})
	defer lib.Close()

	lib.PlayOnce("broken")
	lib.PlayLoop("toast-1", "broken")
	lib.Wait()

	assert.Equal(t, 1, dev.plays(), "only the unlock primer played")
	assert.False(t, lib.HasLoop("toast-1"), "failed loop releases its id")
}

func TestLibrary_PlayOnce(t *testing.T) {
	lib, dev := unlockedLibrary(ToneFetcher{})
	defer lib.Close()

	lib.PlayOnce("set")
	lib.Wait()

	assert.Equal(t, 2, dev.plays())
	assert.Empty(t, dev.loopVoices())
}

func TestLibrary_PlayLoopIsIdempotentPerID(t *testing.T) {
	fetcher := &countingFetcher{inner: ToneFetcher{}, gate: make(chan struct{})}
	lib, dev := unlockedLibrary(fetcher)
	defer lib.Close()

	// Both requests arrive while the first load is still in flight.
	lib.PlayLoop("toast-1", "alarm")
	lib.PlayLoop("toast-1", "alarm")
	close(fetcher.gate)
	lib.Wait()

	assert.Equal(t, []string{"toast-1"}, lib.ActiveLoops())
	assert.Len(t, dev.loopVoices(), 1)
	assert.EqualValues(t, 1, fetcher.calls.Load())

	lib.PlayLoop("toast-1", "alarm")
	lib.Wait()
	assert.Len(t, dev.loopVoices(), 1)
}

func TestLibrary_ConcurrentPlayLoopStartsOneVoice(t *testing.T) {
	lib, dev := unlockedLibrary(ToneFetcher{})
	defer lib.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lib.PlayLoop("toast-1", "alarm")
		}()
	}
	wg.Wait()
	lib.Wait()

	assert.Len(t, dev.loopVoices(), 1)
}

func TestLibrary_StopLoop(t *testing.T) {
	lib, dev := unlockedLibrary(ToneFetcher{})
	defer lib.Close()

	lib.PlayLoop("toast-1", "alarm")
	lib.PlayLoop("toast-2", "alarm")
	lib.Wait()
	require.Len(t, dev.loopVoices(), 2)

	lib.StopLoop("toast-1")
	lib.StopLoop("toast-1")
	lib.StopLoop("unknown")

	assert.Equal(t, []string{"toast-2"}, lib.ActiveLoops())
	assert.Len(t, dev.loopVoices(), 1)

	// A stopped id can loop again.
	lib.PlayLoop("toast-1", "alarm")
	lib.Wait()
	assert.Len(t, dev.loopVoices(), 2)
}

func TestLibrary_StopWhileLoadingNeverStartsAudio(t *testing.T) {
	fetcher := &countingFetcher{inner: ToneFetcher{}, gate: make(chan struct{})}
	lib, dev := unlockedLibrary(fetcher)
	defer lib.Close()

	lib.PlayLoop("toast-1", "alarm")
	lib.StopLoop("toast-1")
	close(fetcher.gate)
	lib.Wait()

	assert.Empty(t, dev.loopVoices())
	assert.False(t, lib.HasLoop("toast-1"))
}

func TestLibrary_CloseStopsLoops(t *testing.T) {
	lib, dev := unlockedLibrary(ToneFetcher{})
	lib.PlayLoop("a", "alarm")
	lib.PlayLoop("b", "alarm")
	lib.Wait()

	lib.Close()
	assert.Empty(t, dev.loopVoices())
	assert.Empty(t, lib.ActiveLoops())
}

func TestHTTPFetcher(t *testing.T) {
	wav, err := ToneFetcher{}.Fetch(context.Background(), "chime")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/audio/wake%20up.wav" {
			http.NotFound(w, r)
			return
		}
		w.Write(wav)
	}))
	defer srv.Close()

	f := HTTPFetcher{BaseURL: srv.URL + "/audio/", Client: srv.Client()}
	got, err := f.Fetch(context.Background(), "wake up")
	require.NoError(t, err)
	assert.Equal(t, wav, got)

	_, err = f.Fetch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Fetch(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChain_FallsBackInOrder(t *testing.T) {
	c := Chain{DirFetcher{Dir: t.TempDir()}, ToneFetcher{}}
	data, err := c.Fetch(context.Background(), "alarm")
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = c.Fetch(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibrary_PlayAfterCloseIsIgnored(t *testing.T) {
	lib, dev := unlockedLibrary(ToneFetcher{})
	_, err := lib.Load(context.Background(), "chime")
	require.NoError(t, err)
	lib.Close()

	// The asset is cached, so nothing would wait on the cancelled context
	lib.PlayLoop("toast-1", "chime")
	lib.PlayOnce("chime")
	lib.Wait()

	assert.Equal(t, 1, dev.plays(), "only the unlock primer played")
	assert.Empty(t, lib.ActiveLoops())
	assert.False(t, lib.HasLoop("toast-1"))
}

func TestLibrary_CloseRacingPlayback(t *testing.T) {
	lib, dev := unlockedLibrary(ToneFetcher{})
	_, err := lib.Load(context.Background(), "alarm")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 20 {
				lib.PlayLoop(fmt.Sprintf("toast-%d-%d", i, j), "alarm")
				lib.PlayOnce("alarm")
			}
		}()
	}
	lib.Close()
	wg.Wait()
	lib.Wait()

	assert.Empty(t, lib.ActiveLoops())
	assert.Empty(t, dev.loopVoices(), "no loop outlives Close")
}
