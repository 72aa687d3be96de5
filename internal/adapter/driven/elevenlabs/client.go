// Package elevenlabs implements the Transcriber port against the
// ElevenLabs speech-to-text API: opaque audio bytes in, text out.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"braindump/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Transcriber = (*Client)(nil)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	// Scribe v2 supports 90+ languages with the best accuracy.
	modelID = "scribe_v2"
)

// Client calls the ElevenLabs speech-to-text endpoint.
type Client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

// NewClient creates a Client.
func NewClient(apiKey string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, hc: hc}
}

// NewClientWithBaseURL creates a Client pointed at a custom endpoint,
// intended for tests with an httptest server.
func NewClientWithBaseURL(apiKey, baseURL string, hc *http.Client) *Client {
	c := NewClient(apiKey, hc)
	c.baseURL = baseURL
	return c
}

// transcription is the subset of the response this adapter reads. Some
// response variants carry the text at the top level, others inside a
// transcripts array.
type transcription struct {
	Text        string `json:"text"`
	Transcripts []struct {
		Text string `json:"text"`
	} `json:"transcripts"`
}

// Transcribe uploads the audio and returns the transcribed text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("elevenlabs api key not configured")
	}
	if filename == "" {
		filename = "audio.wav"
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("model_id", modelID); err != nil {
		return "", fmt.Errorf("write form field: %w", err)
	}
	file, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := file.Write(audio); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/speech-to-text", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("call elevenlabs: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("invalid elevenlabs api key")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("elevenlabs returned status %d: %s", resp.StatusCode, body)
	}

	var tr transcription
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := tr.Text
	if text == "" && len(tr.Transcripts) > 0 {
		text = tr.Transcripts[0].Text
	}
	if text == "" {
		return "", fmt.Errorf("empty transcription returned")
	}
	return text, nil
}
