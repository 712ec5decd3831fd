// Package remote is the client for the voice-processing backend: voice
// model training, voice-removal processing, and Google login exchange.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Shoji0121/voice-remove/internal/staging"
)

// DefaultTrainMessage is shown when a successful training response carries
// no message of its own.
const DefaultTrainMessage = "Training completed!"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the backend at baseURL. A nil httpClient
// falls back to http.DefaultClient; no client-side timeout is imposed, so
// train and process can legitimately run for minutes.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Train submits a training sample and user id to POST /train. On success
// it returns the backend's human-readable message.
func (c *Client) Train(ctx context.Context, file *staging.File, userID string) (string, error) {
	if file == nil {
		return "", errors.New("training file is required")
	}

	body, contentType, err := multipartBody(map[string]string{"userId": userID}, map[string]*staging.File{"file": file})
	if err != nil {
		return "", err
	}

	data, err := c.post(ctx, "/train", contentType, body)
	if err != nil {
		return "", err
	}

	var ack struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &ack); err != nil || ack.Message == "" {
		return DefaultTrainMessage, nil
	}
	return ack.Message, nil
}

// Process submits the staged video, the optional reference voice sample,
// and the user id to POST /process. On success it returns the processed
// video bytes.
func (c *Client) Process(ctx context.Context, video, voice *staging.File, userID string) ([]byte, error) {
	if video == nil {
		return nil, errors.New("video file is required")
	}

	files := map[string]*staging.File{"videoFile": video}
	if voice != nil {
		files["voiceFile"] = voice
	}
	body, contentType, err := multipartBody(map[string]string{"userId": userID}, files)
	if err != nil {
		return nil, err
	}

	return c.post(ctx, "/process", contentType, body)
}

// Login exchanges a Google ID token for the backend's stable user id via
// POST /auth/google.
func (c *Client) Login(ctx context.Context, idToken string) (string, error) {
	payload, err := json.Marshal(map[string]string{"idToken": idToken})
	if err != nil {
		return "", err
	}

	data, err := c.post(ctx, "/auth/google", "application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var resp struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if resp.UserID == "" {
		return "", errors.New("login response carried no userId")
	}
	return resp.UserID, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Status: resp.StatusCode, Detail: errorDetail(data)}
	}

	return data, nil
}

// errorDetail pulls the "error" field out of a failure body when the
// backend sent JSON, otherwise falls back to the raw text.
func errorDetail(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}

func multipartBody(fields map[string]string, files map[string]*staging.File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for name, file := range files {
		part, err := w.CreateFormFile(name, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
