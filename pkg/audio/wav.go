package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Format describes interleaved signed 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// BytesPerFrame is the size of one sample across all channels.
func (f Format) BytesPerFrame() int { return f.Channels * 2 }

// DefaultFormat is the output format used when none is configured.
var DefaultFormat = Format{SampleRate: 44100, Channels: 2}

// ErrUnsupportedFormat is returned for audio the output device cannot play.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// EncodeWAV wraps raw PCM in a minimal RIFF/WAVE container. The go-audio
// encoder needs an io.WriteSeeker, which a byte slice is not.
func EncodeWAV(pcm []byte, f Format) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(44 + len(pcm))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(f.Channels))
	binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate*f.BytesPerFrame()))
	binary.Write(buf, binary.LittleEndian, uint16(f.BytesPerFrame()))
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
