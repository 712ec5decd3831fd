package audio

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/gordonklaus/portaudio"
)

// DefaultFramesPerBuffer is the capture buffer size in frames.
const DefaultFramesPerBuffer = 1024

// Mic wraps a PortAudio input stream as a Source.
type Mic struct {
	stream *portaudio.Stream
	buf    []int16
	rate   int
}

// NewMic opens a PortAudio capture stream with the given sample rate and
// buffer size (in frames). The caller must have run portaudio.Initialize.
func NewMic(sampleRate, framesPerBuffer int) (*Mic, error) {
	buf := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), framesPerBuffer, buf)
	if err != nil {
		return nil, err
	}
	return &Mic{stream: stream, buf: buf, rate: sampleRate}, nil
}

// OpenMic opens the default input device, trying each sample rate in order
// until one is accepted by the hardware.
func OpenMic(sampleRates []int, framesPerBuffer int) (Source, error) {
	var lastErr error
	for _, rate := range sampleRates {
		mic, err := NewMic(rate, framesPerBuffer)
		if err != nil {
			lastErr = err
			continue
		}
		return mic, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no sample rates configured")
	}
	return nil, lastErr
}

func (m *Mic) Start() error { return m.stream.Start() }

func (m *Mic) Stop() error { return m.stream.Abort() }

func (m *Mic) Close() error { return m.stream.Close() }

func (m *Mic) SampleRate() int { return m.rate }

// Read pulls one buffer from the device and returns it as PCM16-LE bytes.
func (m *Mic) Read() ([]byte, error) {
	if err := m.stream.Read(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(m.buf) * 2)
	if err := binary.Write(&out, binary.LittleEndian, m.buf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
