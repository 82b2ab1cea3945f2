// Package classifier suggests hierarchical tag paths for a task by asking a
// hosted LLM. Suggestions are best-effort: an empty or unparseable response
// means "no tags suggested", never an error the caller must handle.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1/messages"
	anthropicModel   = "claude-3-5-sonnet-20241022"
	anthropicVersion = "2023-06-01"
	maxTokens        = 200
)

// jsonArray matches the first JSON array embedded in the model's reply.
var jsonArray = regexp.MustCompile(`(?s)\[.*?\]`)

// Client calls the Anthropic messages API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: anthropicBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Suggest returns up to a few slash-delimited tag paths for the task.
// hierarchy is the current tag forest rendered as per-category leaf paths.
func (c *Client) Suggest(ctx context.Context, title, description, category, hierarchy string) ([]string, error) {
	prompt := fmt.Sprintf(`Task: %q
Description: %q
Category: %s

Current tag hierarchy:
%s

Suggest 1-3 specific tags for this task. Return as JSON array of tag paths.
If tags don't exist, suggest new ones following the hierarchy pattern.
Be specific - use the deepest appropriate level.

Example response: ["Computer Science/Web Development/Frontend Development/React Components"]`,
		title, description, category, hierarchy)

	body, err := json.Marshal(messagesRequest{
		Model:     anthropicModel,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("classifier API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("classifier API error (%d)", resp.StatusCode)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(msgResp.Content) == 0 {
		return nil, nil
	}

	return ParsePaths(msgResp.Content[0].Text), nil
}

// ParsePaths extracts the first JSON array of strings from free text.
// Anything else yields no suggestions.
func ParsePaths(text string) []string {
	match := jsonArray.FindString(text)
	if match == "" {
		return nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(match), &paths); err != nil {
		return nil
	}
	return paths
}
