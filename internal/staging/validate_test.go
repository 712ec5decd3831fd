package staging

import (
	"errors"
	"testing"
)

func TestValidateAcceptsTrainingAudio(t *testing.T) {
	if err := Validate("clip.wav", 10*1024*1024, AudioSlot); err != nil {
		t.Fatalf("expected clip.wav to pass, got %v", err)
	}
}

func TestValidateExtensions(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		cfg      SlotConfig
		ok       bool
	}{
		{"wav audio", "sample.wav", AudioSlot, true},
		{"mp3 audio", "sample.mp3", AudioSlot, true},
		{"m4a audio", "sample.m4a", AudioSlot, true},
		{"uppercase extension", "SAMPLE.WAV", AudioSlot, true},
		{"mp4 rejected for audio", "sample.mp4", AudioSlot, false},
		{"mp4 video", "movie.mp4", VideoSlot, true},
		{"mov rejected for video", "clip.mov", VideoSlot, false},
		{"no extension", "README", AudioSlot, false},
		{"trailing dot", "sample.", AudioSlot, false},
		{"dotfile", ".wav", AudioSlot, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.filename, 1024, tc.cfg)
			if tc.ok && err != nil {
				t.Fatalf("expected %q to pass, got %v", tc.filename, err)
			}
			if !tc.ok {
				var extErr *InvalidExtensionError
				if !errors.As(err, &extErr) {
					t.Fatalf("expected InvalidExtensionError for %q, got %v", tc.filename, err)
				}
			}
		})
	}
}

func TestValidateVideoExtensionDetail(t *testing.T) {
	err := Validate("clip.mov", 1024, VideoSlot)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if got := err.Error(); got != "Invalid file type. Allowed: .mp4" {
		t.Fatalf("unexpected detail %q", got)
	}
}

func TestValidateSizeBound(t *testing.T) {
	// The bound is inclusive: exactly 20 MiB passes.
	if err := Validate("sample.wav", AudioSlot.MaxBytes, AudioSlot); err != nil {
		t.Fatalf("expected file at the limit to pass, got %v", err)
	}

	err := Validate("movie.mp4", 210*1024*1024, VideoSlot)
	var sizeErr *FileTooLargeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected FileTooLargeError, got %v", err)
	}
	if got := err.Error(); got != "File size exceeds limit of 200 MB" {
		t.Fatalf("unexpected detail %q", got)
	}
}

func TestValidateAudioSizeDetail(t *testing.T) {
	err := Validate("sample.wav", AudioSlot.MaxBytes+1, AudioSlot)
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if got := err.Error(); got != "File size exceeds limit of 20 MB" {
		t.Fatalf("unexpected detail %q", got)
	}
}
