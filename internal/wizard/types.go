package wizard

import (
	"context"

	"github.com/Shoji0121/voice-remove/internal/staging"
	"github.com/Shoji0121/voice-remove/internal/storage"
)

// Recorder is the live-capture collaborator.
type Recorder interface {
	Start() error
	Stop() (*staging.File, error)
	Recording() bool
}

// Backend is the remote voice-processing server.
type Backend interface {
	Train(ctx context.Context, file *staging.File, userID string) (string, error)
	Process(ctx context.Context, video, voice *staging.File, userID string) ([]byte, error)
}

// BlobStore hands out locally resolvable URLs for in-memory artifacts.
type BlobStore interface {
	Put(name, contentType string, data []byte) string
	Release(url string)
}

// StateBroadcaster pushes session snapshots to connected clients.
type StateBroadcaster interface {
	BroadcastState(state State)
}

// Journal records completed operation attempts.
type Journal interface {
	Record(e storage.Entry) error
}

// State is a snapshot of the wizard session, shaped for the UI.
type State struct {
	Step         int    `json:"step"`
	Processing   bool   `json:"processing"`
	Recording    bool   `json:"recording"`
	ErrorMessage string `json:"error_message,omitempty"`
	Message      string `json:"message,omitempty"`
	UserID       string `json:"user_id"`
	TrainingFile string `json:"training_file,omitempty"`
	VoiceFile    string `json:"voice_file,omitempty"`
	VideoFile    string `json:"video_file,omitempty"`
	RecordingURL string `json:"recording_url,omitempty"`
	ProcessedURL string `json:"processed_url,omitempty"`
}
