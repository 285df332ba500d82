package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when no source has the named sound.
var ErrNotFound = errors.New("sound not found")

// Fetcher resolves a logical sound name to encoded MP3 or WAV bytes.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid sound name %q", ErrNotFound, name)
	}
	return nil
}

// soundExts are the file extensions tried for a sound name, in order.
var soundExts = []string{".mp3", ".wav"}

// DirFetcher reads <Dir>/<name>.mp3, falling back to <Dir>/<name>.wav.
type DirFetcher struct {
	Dir string
}

func (f DirFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	for _, ext := range soundExts {
		data, err := os.ReadFile(filepath.Join(f.Dir, name+ext))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read sound %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, name, f.Dir)
}

// HTTPFetcher downloads <BaseURL>/<escaped name>.mp3, falling back to .wav
// when the server has no MP3.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	var err error
	for _, ext := range soundExts {
		target := strings.TrimRight(f.BaseURL, "/") + "/" + url.PathEscape(name) + ext
		var data []byte
		data, err = getSound(ctx, client, name, target)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, err
}

func getSound(ctx context.Context, client *http.Client, name, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", name, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sound %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sound %s: unexpected status %s", name, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sound %s: %w", name, err)
	}
	return data, nil
}

// Chain tries each fetcher in order and returns the first success.
type Chain []Fetcher

func (c Chain) Fetch(ctx context.Context, name string) ([]byte, error) {
	err := fmt.Errorf("%w: %s", ErrNotFound, name)
	for _, f := range c {
		data, ferr := f.Fetch(ctx, name)
		if ferr == nil {
			return data, nil
		}
		err = ferr
	}
	return nil, err
}

type tone struct {
	freqs    []float64 // played back to back
	segment  time.Duration
	gap      time.Duration
	volume   float64
	decay    float64
	repeatIn time.Duration // trailing silence, makes loops breathe
}

var builtinTones = map[string]tone{
	"alarm":    {freqs: []float64{880, 660, 880, 660}, segment: 180 * time.Millisecond, gap: 40 * time.Millisecond, volume: 0.45, decay: 2, repeatIn: 400 * time.Millisecond},
	"set":      {freqs: []float64{660, 990}, segment: 90 * time.Millisecond, gap: 20 * time.Millisecond, volume: 0.35, decay: 12},
	"complete": {freqs: []float64{523, 659, 784}, segment: 110 * time.Millisecond, gap: 15 * time.Millisecond, volume: 0.35, decay: 10},
	"chime":    {freqs: []float64{1047}, segment: 350 * time.Millisecond, volume: 0.3, decay: 6},
}

// ToneFetcher synthesizes a small set of built-in sounds as WAV.
type ToneFetcher struct {
	Format Format
}

// BuiltinSounds lists the names ToneFetcher can produce.
func BuiltinSounds() []string {
	return []string{"alarm", "chime", "complete", "set"}
}

func (f ToneFetcher) Fetch(_ context.Context, name string) ([]byte, error) {
	t, ok := builtinTones[name]
	if !ok {
		return nil, fmt.Errorf("%w: no built-in tone %q", ErrNotFound, name)
	}
	format := f.Format
	if format.SampleRate == 0 || format.Channels == 0 {
		format = DefaultFormat
	}
	return EncodeWAV(synthesize(t, format), format), nil
}

func synthesize(t tone, f Format) []byte {
	buf := new(bytes.Buffer)
	writeFrame := func(s int16) {
		for c := 0; c < f.Channels; c++ {
			binary.Write(buf, binary.LittleEndian, s)
		}
	}
	silence := func(d time.Duration) {
		for i := 0; i < int(d.Seconds()*float64(f.SampleRate)); i++ {
			writeFrame(0)
		}
	}

	for i, freq := range t.freqs {
		n := int(t.segment.Seconds() * float64(f.SampleRate))
		for j := 0; j < n; j++ {
			at := float64(j) / float64(f.SampleRate)
			envelope := math.Exp(-at * t.decay)
			writeFrame(int16(math.Sin(2*math.Pi*freq*at) * 32767 * t.volume * envelope))
		}
		if i < len(t.freqs)-1 {
			silence(t.gap)
		}
	}
	silence(t.repeatIn)
	return buf.Bytes()
}
