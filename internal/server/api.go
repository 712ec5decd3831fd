package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Shoji0121/voice-remove/internal/audio"
	"github.com/Shoji0121/voice-remove/internal/auth"
	"github.com/Shoji0121/voice-remove/internal/blob"
	"github.com/Shoji0121/voice-remove/internal/remote"
	"github.com/Shoji0121/voice-remove/internal/staging"
	"github.com/Shoji0121/voice-remove/internal/storage"
	"github.com/Shoji0121/voice-remove/internal/wizard"
)

// maxUploadBytes bounds a staging request body: the video limit plus room
// for multipart framing. Slot-specific limits are enforced by validation.
const maxUploadBytes = 201 * 1024 * 1024

type Journal interface {
	Recent(limit int) ([]storage.Entry, error)
}

type BlobGetter interface {
	Get(id string) (*blob.Blob, bool)
}

func registerAPIRoutes(mux *http.ServeMux, wiz *wizard.Wizard, journal Journal, blobs BlobGetter, google *auth.Google) {
	mux.HandleFunc("GET /api/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, wiz.Snapshot())
	})

	mux.HandleFunc("POST /api/record/start", func(w http.ResponseWriter, r *http.Request) {
		if err := wiz.StartRecording(); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, wiz.Snapshot())
	})

	mux.HandleFunc("POST /api/record/stop", func(w http.ResponseWriter, r *http.Request) {
		if err := wiz.StopRecording(); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, wiz.Snapshot())
	})

	mux.HandleFunc("POST /api/stage/{slot}", func(w http.ResponseWriter, r *http.Request) {
		slot := r.PathValue("slot")

		file, err := readUpload(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		switch slot {
		case "training":
			err = wiz.StageTraining(file)
		case "voice":
			err = wiz.StageVoice(file)
		case "video":
			err = wiz.StageVideo(file)
		default:
			writeJSONError(w, http.StatusNotFound, fmt.Sprintf("unknown slot %q", slot))
			return
		}
		if err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}

		writeJSON(w, http.StatusOK, wiz.Snapshot())
	})

	mux.HandleFunc("POST /api/user", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			UserID string `json:"user_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("decode body: %v", err))
			return
		}
		wiz.SetUserID(strings.TrimSpace(payload.UserID))
		writeJSON(w, http.StatusOK, wiz.Snapshot())
	})

	// Train and process run on a background context: an in-flight call
	// cannot be cancelled, only awaited.
	mux.HandleFunc("POST /api/train", func(w http.ResponseWriter, r *http.Request) {
		msg, err := wiz.Train(context.Background())
		if err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": msg, "state": wiz.Snapshot()})
	})

	mux.HandleFunc("POST /api/process", func(w http.ResponseWriter, r *http.Request) {
		url, err := wiz.Process(context.Background())
		if err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"video_url": url, "state": wiz.Snapshot()})
	})

	mux.HandleFunc("POST /api/skip", func(w http.ResponseWriter, r *http.Request) {
		if err := wiz.Skip(); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, wiz.Snapshot())
	})

	mux.HandleFunc("POST /api/back", func(w http.ResponseWriter, r *http.Request) {
		if err := wiz.Back(); err != nil {
			writeJSONError(w, statusForError(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, wiz.Snapshot())
	})

	mux.HandleFunc("GET /api/history", func(w http.ResponseWriter, r *http.Request) {
		if journal == nil {
			writeJSON(w, http.StatusOK, []storage.Entry{})
			return
		}
		entries, err := journal.Recent(50)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list history: %v", err))
			return
		}
		if entries == nil {
			entries = []storage.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)
	})

	mux.HandleFunc("GET "+blob.PathPrefix+"{id}", func(w http.ResponseWriter, r *http.Request) {
		b, ok := blobs.Get(r.PathValue("id"))
		if !ok {
			writeJSONError(w, http.StatusNotFound, "no such artifact")
			return
		}
		w.Header().Set("Content-Type", b.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", b.Name))
		http.ServeContent(w, r, b.Name, time.Time{}, bytes.NewReader(b.Data))
	})

	mux.HandleFunc("GET /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if google == nil {
			writeJSONError(w, http.StatusNotFound, "google sign-in is not configured")
			return
		}
		http.Redirect(w, r, google.LoginURL(), http.StatusFound)
	})

	mux.HandleFunc("GET /api/auth/callback", func(w http.ResponseWriter, r *http.Request) {
		if google == nil {
			writeJSONError(w, http.StatusNotFound, "google sign-in is not configured")
			return
		}
		if _, err := google.HandleCallback(r.Context(), r.URL.Query().Get("state"), r.URL.Query().Get("code")); err != nil {
			writeJSONError(w, http.StatusUnauthorized, err.Error())
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	})
}

func readUpload(r *http.Request) (*staging.File, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	f, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}

	return &staging.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, wizard.ErrBusy), errors.Is(err, wizard.ErrWrongStep):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrNoTrainingFile), errors.Is(err, wizard.ErrNoVideoFile):
		return http.StatusBadRequest
	}

	var extErr *staging.InvalidExtensionError
	var sizeErr *staging.FileTooLargeError
	if errors.As(err, &extErr) || errors.As(err, &sizeErr) {
		return http.StatusBadRequest
	}

	var mediaErr *audio.MediaAccessError
	if errors.As(err, &mediaErr) {
		return http.StatusServiceUnavailable
	}

	var serverErr *remote.ServerError
	var netErr *remote.NetworkError
	if errors.As(err, &serverErr) || errors.As(err, &netErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
