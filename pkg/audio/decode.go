package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// pcm16 is decoded audio as interleaved signed 16-bit samples.
type pcm16 struct {
	samples    []int16
	channels   int
	sampleRate int
}

func (p pcm16) frames() int { return len(p.samples) / p.channels }

// Decode turns an MP3 or WAV file into PCM laid out for out, resampling and
// remixing channels as needed.
func Decode(data []byte, out Format) ([]byte, error) {
	if out.SampleRate <= 0 || out.Channels <= 0 {
		return nil, fmt.Errorf("%w: output %d Hz, %d channels", ErrUnsupportedFormat, out.SampleRate, out.Channels)
	}

	var (
		src pcm16
		err error
	)
	if isMP3(data) {
		src, err = decodeMP3(data)
	} else {
		src, err = decodeWAV(data)
	}
	if err != nil {
		return nil, err
	}
	if src.channels <= 0 || src.frames() == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrUnsupportedFormat)
	}

	dst := resample(remix(src, out.Channels), out.SampleRate)
	buf := make([]byte, len(dst.samples)*2)
	for i, s := range dst.samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf, nil
}

// isMP3 looks for an ID3 tag or an MPEG frame sync.
func isMP3(data []byte) bool {
	if bytes.HasPrefix(data, []byte("ID3")) {
		return true
	}
	return len(data) > 1 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// decodeMP3 yields stereo 16-bit little-endian PCM at the stream's own rate.
func decodeMP3(data []byte) (pcm16, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return pcm16{}, fmt.Errorf("%w: mp3: %w", ErrUnsupportedFormat, err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return pcm16{}, fmt.Errorf("decode mp3: %w", err)
	}
	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	out := pcm16{samples: samples, channels: 2, sampleRate: dec.SampleRate()}
	out.samples = out.samples[:out.frames()*2]
	return out, nil
}

func decodeWAV(data []byte) (pcm16, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return pcm16{}, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedFormat)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return pcm16{}, fmt.Errorf("%w: wav format %d is not integer PCM", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return pcm16{}, fmt.Errorf("decode wav: %w", err)
	}
	channels, rate := int(dec.NumChans), int(dec.SampleRate)
	if buf.Format != nil {
		channels, rate = buf.Format.NumChannels, buf.Format.SampleRate
	}
	if channels <= 0 || rate <= 0 {
		return pcm16{}, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, channels, rate)
	}

	samples, err := toInt16(buf, int(dec.BitDepth))
	if err != nil {
		return pcm16{}, err
	}
	samples = samples[:len(samples)-len(samples)%channels]
	return pcm16{samples: samples, channels: channels, sampleRate: rate}, nil
}

// toInt16 scales integer samples of any supported depth to 16 bits.
// 8-bit WAV data is unsigned.
func toInt16(buf *goaudio.IntBuffer, depth int) ([]int16, error) {
	out := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		switch depth {
		case 8:
			out[i] = int16((v - 128) << 8)
		case 16:
			out[i] = int16(v)
		case 24:
			out[i] = int16(v >> 8)
		case 32:
			out[i] = int16(v >> 16)
		default:
			return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, depth)
		}
	}
	return out, nil
}

// remix maps src onto n channels. Mono output averages every input channel;
// otherwise output channel c copies input channel c modulo the input count.
func remix(src pcm16, n int) pcm16 {
	if src.channels == n {
		return src
	}
	frames := src.frames()
	out := pcm16{samples: make([]int16, frames*n), channels: n, sampleRate: src.sampleRate}
	for f := 0; f < frames; f++ {
		in := src.samples[f*src.channels : (f+1)*src.channels]
		if n == 1 {
			var sum int
			for _, s := range in {
				sum += int(s)
			}
			out.samples[f] = int16(sum / len(in))
			continue
		}
		for c := 0; c < n; c++ {
			out.samples[f*n+c] = in[c%src.channels]
		}
	}
	return out
}

// resample converts src to rate by linear interpolation between frames.
func resample(src pcm16, rate int) pcm16 {
	if src.sampleRate == rate {
		return src
	}
	n := src.channels
	inFrames := src.frames()
	outFrames := int(int64(inFrames) * int64(rate) / int64(src.sampleRate))
	if outFrames == 0 {
		outFrames = 1
	}

	out := pcm16{samples: make([]int16, outFrames*n), channels: n, sampleRate: rate}
	step := float64(src.sampleRate) / float64(rate)
	for f := 0; f < outFrames; f++ {
		pos := float64(f) * step
		i := int(pos)
		if i >= inFrames {
			i = inFrames - 1
		}
		next := min(i+1, inFrames-1)
		frac := pos - float64(i)
		for c := 0; c < n; c++ {
			a := float64(src.samples[i*n+c])
			b := float64(src.samples[next*n+c])
			out.samples[f*n+c] = int16(a + (b-a)*frac)
		}
	}
	return out
}
