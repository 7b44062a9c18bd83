// Package backend talks to the story-generation service: free text in,
// structured storybook out, plus the PDF export. Failures are reported to
// the caller and never alter player state.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"talecanvas/internal/domain/storybook"
)

// GenerateResult is the generation response envelope.
type GenerateResult struct {
	Success   bool                 `json:"success"`
	Storybook *storybook.Storybook `json:"storybook,omitempty"`
	Analysis  *storybook.Analysis  `json:"analysis,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// Client is a thin JSON client over the backend routes.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// GenerateFromChat sends the user's free-text request and returns the
// backend's verdict. A transport failure or an unparseable body is an
// error; a clean {"success": false} is not.
func (c *Client) GenerateFromChat(ctx context.Context, message string) (*GenerateResult, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/generate_story_from_chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logrus.WithField("message", message).Info("requesting story generation")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generation request: HTTP %d", resp.StatusCode)
	}

	var result GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}
	return &result, nil
}

// CurrentStorybook fetches the backend's most recently generated storybook.
func (c *Client) CurrentStorybook(ctx context.Context) (*storybook.Storybook, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/get_current_storybook", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch current storybook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch current storybook: HTTP %d", resp.StatusCode)
	}

	var result GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode storybook: %w", err)
	}
	if !result.Success || result.Storybook == nil {
		return nil, fmt.Errorf("no current storybook: %s", result.Error)
	}
	return result.Storybook, nil
}

// ExportPDF requests the PDF rendering of a storybook and streams the
// binary into w. Non-2xx responses carry a JSON {"error": ...} payload.
func (c *Client) ExportPDF(ctx context.Context, storybookID string, w io.Writer) error {
	body, err := json.Marshal(map[string]string{"storybook_id": storybookID})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/export_pdf", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("export request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("export failed: %s", apiErr.Error)
		}
		return fmt.Errorf("export failed: HTTP %d", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download export: %w", err)
	}
	return nil
}
