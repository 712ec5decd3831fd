package audio

import (
	"sync"

	"github.com/Shoji0121/voice-remove/internal/staging"
)

// RecordingFilename is the name given to every finished capture.
const RecordingFilename = "recording.wav"

const (
	captureChannels = 1
	captureBitDepth = 16
)

// Source supplies raw PCM16-LE fragments from an input device. Read blocks
// until a fragment is available and returns an error once the source stops.
type Source interface {
	Start() error
	Read() ([]byte, error)
	Stop() error
	Close() error
	SampleRate() int
}

// MediaAccessError reports that the microphone could not be acquired.
type MediaAccessError struct {
	Err error
}

func (e *MediaAccessError) Error() string {
	return "microphone unavailable: " + e.Err.Error()
}

func (e *MediaAccessError) Unwrap() error {
	return e.Err
}

// Capture is a two-state recording controller: Idle or Recording. Starting
// acquires a source and accumulates fragments in arrival order; stopping
// finalizes them into a single WAV artifact. Fragment accumulation is an
// implementation detail; the artifact from Stop is the only externally
// visible result.
type Capture struct {
	open func() (Source, error)

	mu         sync.Mutex
	source     Source
	chunks     [][]byte
	sampleRate int
	done       chan struct{}
}

// NewCapture builds a controller around a source factory. The factory runs
// on every Start so each capture gets a fresh device handle.
func NewCapture(open func() (Source, error)) *Capture {
	return &Capture{open: open}
}

// Recording reports whether a capture is active.
func (c *Capture) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source != nil
}

// Start begins a capture. It is a no-op while already recording. The
// mutex is held across acquisition: concurrent Start calls serialize, and
// whichever loses the race finds an active source and does nothing. An
// acquisition failure is reported as a MediaAccessError and leaves the
// controller Idle.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source != nil {
		return nil
	}

	src, err := c.open()
	if err != nil {
		return &MediaAccessError{Err: err}
	}
	if err := src.Start(); err != nil {
		_ = src.Close()
		return &MediaAccessError{Err: err}
	}

	done := make(chan struct{})
	c.source = src
	c.chunks = nil
	c.sampleRate = src.SampleRate()
	c.done = done

	go c.pump(src, done)
	return nil
}

func (c *Capture) pump(src Source, done chan struct{}) {
	defer close(done)
	for {
		data, err := src.Read()
		if len(data) > 0 {
			chunk := make([]byte, len(data))
			copy(chunk, data)

			c.mu.Lock()
			c.chunks = append(c.chunks, chunk)
			c.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Stop finalizes the capture into a named WAV file. Calling Stop while
// Idle is a no-op and returns a nil file; a second Stop without an
// intervening Start is therefore safe.
func (c *Capture) Stop() (*staging.File, error) {
	c.mu.Lock()
	src := c.source
	done := c.done
	c.source = nil
	c.done = nil
	c.mu.Unlock()

	if src == nil {
		return nil, nil
	}

	_ = src.Stop()
	_ = src.Close()
	<-done

	c.mu.Lock()
	chunks := c.chunks
	sampleRate := c.sampleRate
	c.chunks = nil
	c.mu.Unlock()

	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	pcm := make([]byte, 0, total)
	for _, chunk := range chunks {
		pcm = append(pcm, chunk...)
	}

	return &staging.File{
		Name:        RecordingFilename,
		ContentType: "audio/wav",
		Data:        EncodeWAV(pcm, sampleRate, captureChannels, captureBitDepth),
	}, nil
}
