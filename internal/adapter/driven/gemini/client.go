// Package gemini implements the Organizer port with a single
// generateContent call to the Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"braindump/internal/domain/model"
	"braindump/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Organizer = (*Client)(nil)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client calls the Gemini generateContent endpoint and parses the model's
// JSON output into an OrganizeResponse.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	hc      *http.Client
}

// NewClient creates a Client. model names the Gemini model, e.g.
// "gemini-2.5-flash".
func NewClient(apiKey, model string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{apiKey: apiKey, model: model, baseURL: defaultBaseURL, hc: hc}
}

// NewClientWithBaseURL creates a Client pointed at a custom endpoint,
// intended for tests with an httptest server.
func NewClientWithBaseURL(apiKey, model, baseURL string, hc *http.Client) *Client {
	c := NewClient(apiKey, model, hc)
	c.baseURL = baseURL
	return c
}

// request/response shapes for the generateContent call.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Organize sends one generateContent call and parses the structured
// result. Invalid task entries are skipped rather than failing the whole
// response; confidences are clamped to [0, 1].
func (c *Client) Organize(ctx context.Context, req model.OrganizeRequest) (model.OrganizeResponse, error) {
	prompt := systemPrompt + "\n\n" + buildUserPrompt(req.Text, req.TodayISO)

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return model.OrganizeResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return model.OrganizeResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return model.OrganizeResponse{}, fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.OrganizeResponse{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.OrganizeResponse{}, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, body)
	}

	var gen generateResponse
	if err := json.Unmarshal(body, &gen); err != nil {
		return model.OrganizeResponse{}, fmt.Errorf("decode response: %w", err)
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return model.OrganizeResponse{}, fmt.Errorf("empty response from gemini")
	}

	return parseModelOutput(gen.Candidates[0].Content.Parts[0].Text)
}

// fenceRe matches a bare JSON object inside arbitrary surrounding text.
var fenceRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseModelOutput extracts and validates the JSON the model produced.
// Models wrap output in markdown fences often enough that both the fenced
// and bare forms are handled.
func parseModelOutput(text string) (model.OrganizeResponse, error) {
	cleaned := stripFences(text)

	var out model.OrganizeResponse
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		// Fallback: find the first JSON object in the text.
		match := fenceRe.FindString(cleaned)
		if match == "" {
			return model.OrganizeResponse{}, fmt.Errorf("parse model output: %w", err)
		}
		if err := json.Unmarshal([]byte(match), &out); err != nil {
			return model.OrganizeResponse{}, fmt.Errorf("parse model output: %w", err)
		}
	}

	tasks := out.Tasks[:0]
	for _, task := range out.Tasks {
		if task.Title == "" {
			slog.Warn("skipping organize task without title")
			continue
		}
		if task.Confidence < 0 {
			task.Confidence = 0
		} else if task.Confidence > 1 {
			task.Confidence = 1
		}
		tasks = append(tasks, task)
	}
	out.Tasks = tasks

	if out.Tasks == nil {
		out.Tasks = []model.OrganizeTask{}
	}
	if out.Notes == nil {
		out.Notes = []string{}
	}
	if out.FollowUps == nil {
		out.FollowUps = []string{}
	}
	if out.Suggestions == nil {
		out.Suggestions = []string{}
	}

	return out, nil
}

// stripFences removes a surrounding markdown code block, if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
