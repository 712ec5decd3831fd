package staging

import (
	"errors"
	"sync"
)

// File is a staged upload held in memory: the payload bytes plus the
// declared filename and content type.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (f *File) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// Area holds the three upload slots and the user identifier. A file only
// enters a slot after passing validation for that slot; a rejected file
// leaves the previous slot value untouched. An empty user id means the
// backend's default voice model.
type Area struct {
	mu       sync.Mutex
	training *File
	voice    *File
	video    *File
	userID   string
}

func NewArea() *Area {
	return &Area{}
}

// SetTraining stages a training audio file. The training slot's value can
// come from either a finished recording or an upload; each new source
// fully replaces the prior value.
func (a *Area) SetTraining(f *File) error {
	return a.set(&a.training, f, AudioSlot)
}

// SetVoice stages the optional reference voice sample.
func (a *Area) SetVoice(f *File) error {
	return a.set(&a.voice, f, AudioSlot)
}

// SetVideo stages the video to be processed.
func (a *Area) SetVideo(f *File) error {
	return a.set(&a.video, f, VideoSlot)
}

func (a *Area) set(slot **File, f *File, cfg SlotConfig) error {
	if f == nil {
		return errors.New("no file provided")
	}
	if err := Validate(f.Name, f.Size(), cfg); err != nil {
		return err
	}

	a.mu.Lock()
	*slot = f
	a.mu.Unlock()
	return nil
}

func (a *Area) Training() *File {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.training
}

func (a *Area) Voice() *File {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.voice
}

func (a *Area) Video() *File {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.video
}

func (a *Area) SetUserID(id string) {
	a.mu.Lock()
	a.userID = id
	a.mu.Unlock()
}

func (a *Area) UserID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userID
}
