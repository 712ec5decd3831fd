package wizard

import "errors"

var (
	// ErrBusy rejects a second operation while one is in flight.
	ErrBusy = errors.New("another operation is still in progress")

	// ErrWrongStep rejects an action not available on the current step.
	ErrWrongStep = errors.New("action not available on this step")

	// ErrNoTrainingFile and ErrNoVideoFile are the user-facing prompts for
	// the missing-input guards; no network call is made.
	ErrNoTrainingFile = errors.New("Record or upload a training audio file first.")
	ErrNoVideoFile    = errors.New("Choose a video file to process first.")
)
