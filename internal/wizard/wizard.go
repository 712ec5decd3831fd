// Package wizard drives the three-step voice-removal session: train a
// voice model, submit a video for processing, preview the result. It owns
// the current step, the single in-flight operation flag, and the session's
// one visible error.
package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/Shoji0121/voice-remove/internal/staging"
	"github.com/Shoji0121/voice-remove/internal/storage"
)

const (
	StepTrain  = 1
	StepUpload = 2
	StepResult = 3
)

type Wizard struct {
	staging  *staging.Area
	recorder Recorder
	backend  Backend
	blobs    BlobStore
	hub      StateBroadcaster
	journal  Journal

	mu           sync.Mutex
	step         int
	processing   bool
	errorMessage string
	message      string
	recordingURL string
	processedURL string
}

// New builds a wizard on step 1. hub and journal may be nil.
func New(area *staging.Area, recorder Recorder, backend Backend, blobs BlobStore, hub StateBroadcaster, journal Journal) *Wizard {
	if area == nil {
		area = staging.NewArea()
	}
	return &Wizard{
		staging:  area,
		recorder: recorder,
		backend:  backend,
		blobs:    blobs,
		hub:      hub,
		journal:  journal,
		step:     StepTrain,
	}
}

// Snapshot returns the current session state.
func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	st := State{
		Step:         w.step,
		Processing:   w.processing,
		ErrorMessage: w.errorMessage,
		Message:      w.message,
		RecordingURL: w.recordingURL,
		ProcessedURL: w.processedURL,
	}
	w.mu.Unlock()

	st.UserID = w.staging.UserID()
	if f := w.staging.Training(); f != nil {
		st.TrainingFile = f.Name
	}
	if f := w.staging.Voice(); f != nil {
		st.VoiceFile = f.Name
	}
	if f := w.staging.Video(); f != nil {
		st.VideoFile = f.Name
	}
	if w.recorder != nil {
		st.Recording = w.recorder.Recording()
	}
	return st
}

// StartRecording begins microphone capture for the training sample.
func (w *Wizard) StartRecording() error {
	if w.recorder == nil {
		return fmt.Errorf("no microphone available")
	}
	err := w.recorder.Start()
	w.broadcast()
	return err
}

// StopRecording finalizes the capture, stages it as the training file, and
// publishes a fresh preview URL in place of the previous one. Stopping
// while not recording is a no-op.
func (w *Wizard) StopRecording() error {
	if w.recorder == nil {
		return nil
	}

	file, err := w.recorder.Stop()
	if err != nil {
		w.broadcast()
		return err
	}
	if file == nil {
		w.broadcast()
		return nil
	}

	if err := w.staging.SetTraining(file); err != nil {
		w.broadcast()
		return err
	}

	url := w.blobs.Put(file.Name, file.ContentType, file.Data)
	w.mu.Lock()
	old := w.recordingURL
	w.recordingURL = url
	w.mu.Unlock()
	if old != "" {
		w.blobs.Release(old)
	}

	w.broadcast()
	return nil
}

// StageTraining stages an uploaded training file. The upload replaces any
// earlier recording, so its preview URL is released.
func (w *Wizard) StageTraining(f *staging.File) error {
	if err := w.staging.SetTraining(f); err != nil {
		return err
	}

	w.mu.Lock()
	old := w.recordingURL
	w.recordingURL = ""
	w.mu.Unlock()
	if old != "" {
		w.blobs.Release(old)
	}

	w.broadcast()
	return nil
}

// StageVoice stages the optional reference voice sample.
func (w *Wizard) StageVoice(f *staging.File) error {
	if err := w.staging.SetVoice(f); err != nil {
		return err
	}
	w.broadcast()
	return nil
}

// StageVideo stages the video to be processed.
func (w *Wizard) StageVideo(f *staging.File) error {
	if err := w.staging.SetVideo(f); err != nil {
		return err
	}
	w.broadcast()
	return nil
}

// SetUserID sets the voice-model owner; empty means the default model.
func (w *Wizard) SetUserID(id string) {
	w.staging.SetUserID(id)
	w.broadcast()
}

// Train submits the staged training file to the backend. On success the
// wizard advances to step 2; on failure it stays on step 1 with the error
// recorded as the session's message.
func (w *Wizard) Train(ctx context.Context) (string, error) {
	file := w.staging.Training()

	if err := w.begin(StepTrain, file == nil, ErrNoTrainingFile); err != nil {
		return "", err
	}
	defer w.finish()

	userID := w.staging.UserID()
	msg, err := w.backend.Train(ctx, file, userID)
	if err != nil {
		w.mu.Lock()
		w.errorMessage = "Training failed: " + err.Error()
		w.mu.Unlock()
		w.record("train", userID, file.Name, storage.OutcomeFailure, err.Error())
		return "", err
	}

	w.mu.Lock()
	w.message = msg
	w.step = StepUpload
	w.mu.Unlock()
	w.record("train", userID, file.Name, storage.OutcomeSuccess, msg)
	return msg, nil
}

// Process submits the staged video (and optional voice reference) to the
// backend. On success the processed video is published behind a fresh
// preview URL and the wizard advances to step 3.
func (w *Wizard) Process(ctx context.Context) (string, error) {
	video := w.staging.Video()

	if err := w.begin(StepUpload, video == nil, ErrNoVideoFile); err != nil {
		return "", err
	}
	defer w.finish()

	userID := w.staging.UserID()
	data, err := w.backend.Process(ctx, video, w.staging.Voice(), userID)
	if err != nil {
		w.mu.Lock()
		w.errorMessage = "Processing failed: " + err.Error()
		w.mu.Unlock()
		w.record("process", userID, video.Name, storage.OutcomeFailure, err.Error())
		return "", err
	}

	url := w.blobs.Put("output_video.mp4", "video/mp4", data)
	w.mu.Lock()
	old := w.processedURL
	w.processedURL = url
	w.step = StepResult
	w.mu.Unlock()
	if old != "" {
		w.blobs.Release(old)
	}

	w.record("process", userID, video.Name, storage.OutcomeSuccess, fmt.Sprintf("%d bytes", len(data)))
	return url, nil
}

// Skip moves from step 1 to step 2 without training.
func (w *Wizard) Skip() error {
	w.mu.Lock()
	if w.processing {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.step != StepTrain {
		w.mu.Unlock()
		return ErrWrongStep
	}
	w.step = StepUpload
	w.errorMessage = ""
	w.mu.Unlock()

	w.broadcast()
	return nil
}

// Back navigates one step backwards. Only explicit user navigation moves
// the wizard backwards, never errors or remote results.
func (w *Wizard) Back() error {
	w.mu.Lock()
	if w.processing {
		w.mu.Unlock()
		return ErrBusy
	}
	switch w.step {
	case StepUpload:
		w.step = StepTrain
	case StepResult:
		w.step = StepUpload
	default:
		w.mu.Unlock()
		return ErrWrongStep
	}
	w.errorMessage = ""
	w.mu.Unlock()

	w.broadcast()
	return nil
}

// Close releases the preview URLs held by the session.
func (w *Wizard) Close() {
	w.mu.Lock()
	recording := w.recordingURL
	processed := w.processedURL
	w.recordingURL = ""
	w.processedURL = ""
	w.mu.Unlock()

	if recording != "" {
		w.blobs.Release(recording)
	}
	if processed != "" {
		w.blobs.Release(processed)
	}
}

// begin gates an asynchronous operation: one at a time, right step, input
// staged. The missing-input guard short-circuits before any state change.
func (w *Wizard) begin(step int, missingInput bool, missingErr error) error {
	w.mu.Lock()
	if w.processing {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.step != step {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if missingInput {
		w.mu.Unlock()
		return missingErr
	}
	w.processing = true
	w.errorMessage = ""
	w.message = ""
	w.mu.Unlock()

	w.broadcast()
	return nil
}

// finish clears the in-flight flag unconditionally; deferred so it runs
// even if the backend call panics.
func (w *Wizard) finish() {
	w.mu.Lock()
	w.processing = false
	w.mu.Unlock()
	w.broadcast()
}

func (w *Wizard) record(operation, userID, filename, outcome, detail string) {
	if w.journal == nil {
		return
	}
	_ = w.journal.Record(storage.Entry{
		Operation: operation,
		UserID:    userID,
		Filename:  filename,
		Outcome:   outcome,
		Detail:    detail,
	})
}

func (w *Wizard) broadcast() {
	if w.hub == nil {
		return
	}
	w.hub.BroadcastState(w.Snapshot())
}
