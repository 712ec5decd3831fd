package staging

import (
	"fmt"
	"strings"
)

// SlotConfig describes what a slot accepts: allowed filename extensions
// (lower-case, including the leading dot) and an inclusive size bound.
type SlotConfig struct {
	Extensions []string
	MaxBytes   int64
}

var (
	// AudioSlot covers the training and reference voice slots.
	AudioSlot = SlotConfig{
		Extensions: []string{".wav", ".mp3", ".m4a"},
		MaxBytes:   20 * 1024 * 1024,
	}

	// VideoSlot covers the video slot.
	VideoSlot = SlotConfig{
		Extensions: []string{".mp4"},
		MaxBytes:   200 * 1024 * 1024,
	}
)

// InvalidExtensionError is returned when a filename's extension is not in
// the slot's allowed set.
type InvalidExtensionError struct {
	Allowed []string
}

func (e *InvalidExtensionError) Error() string {
	return "Invalid file type. Allowed: " + strings.Join(e.Allowed, ", ")
}

// FileTooLargeError is returned when a file exceeds the slot's size bound.
type FileTooLargeError struct {
	MaxBytes int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("File size exceeds limit of %d MB", e.MaxBytes/(1024*1024))
}

// Validate checks a candidate file against a slot configuration. It is a
// pure check: the extension is the substring from the last dot to the end
// of the name, lower-cased, and a missing extension never matches.
func Validate(name string, size int64, cfg SlotConfig) error {
	if !extensionAllowed(name, cfg.Extensions) {
		return &InvalidExtensionError{Allowed: cfg.Extensions}
	}
	if size > cfg.MaxBytes {
		return &FileTooLargeError{MaxBytes: cfg.MaxBytes}
	}
	return nil
}

func extensionAllowed(name string, allowed []string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	ext := strings.ToLower(name[idx:])
	for _, candidate := range allowed {
		if ext == candidate {
			return true
		}
	}
	return false
}
