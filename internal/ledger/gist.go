package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	githubBaseURL = "https://api.github.com"
	ledgerFile    = "points.json"
)

// Store loads and saves the ledger document. Save replaces the whole
// document; there is no partial-field patch.
type Store interface {
	Load(ctx context.Context) (*Ledger, error)
	Save(ctx context.Context, l *Ledger) error
}

// GistStore persists the ledger as a single file inside a GitHub Gist.
type GistStore struct {
	gistID  string
	token   string
	baseURL string
	client  *http.Client
}

func NewGistStore(gistID, token string) *GistStore {
	return &GistStore{
		gistID:  gistID,
		token:   token,
		baseURL: githubBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type gistFile struct {
	Content string `json:"content"`
}

type gistPayload struct {
	Files map[string]gistFile `json:"files"`
}

// Load fetches the ledger file. An empty or missing file yields the default
// shape in memory; it is not written back until the next Save.
func (s *GistStore) Load(ctx context.Context) (*Ledger, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/gists/%s", s.baseURL, s.gistID), nil)
	if err != nil {
		return nil, fmt.Errorf("build gist request: %w", err)
	}
	req.Header.Set("Authorization", "token "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch gist: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gist response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gist API error (%d): %s", resp.StatusCode, truncate(body))
	}

	var payload gistPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode gist response: %w", err)
	}

	content := payload.Files[ledgerFile].Content
	if content == "" || content == "{}" {
		return New(), nil
	}

	ledger := &Ledger{}
	if err := json.Unmarshal([]byte(content), ledger); err != nil {
		return nil, fmt.Errorf("decode ledger document: %w", err)
	}
	ledger.normalize()
	return ledger, nil
}

// Save overwrites the ledger file with the full serialized document.
// Last-writer-wins; there is no merge with concurrent writers.
func (s *GistStore) Save(ctx context.Context, l *Ledger) error {
	content, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger document: %w", err)
	}

	body, err := json.Marshal(gistPayload{
		Files: map[string]gistFile{
			ledgerFile: {Content: string(content)},
		},
	})
	if err != nil {
		return fmt.Errorf("encode gist payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, fmt.Sprintf("%s/gists/%s", s.baseURL, s.gistID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gist request: %w", err)
	}
	req.Header.Set("Authorization", "token "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("update gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gist API error (%d): %s", resp.StatusCode, truncate(respBody))
	}
	return nil
}

func truncate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
