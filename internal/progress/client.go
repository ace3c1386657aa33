// Package progress reports reading position to an external persistence
// store. The pacing core itself never persists anything; this client is the
// bridge to whatever stores "last read chunk index" for the user.
package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Record is one progress update for a session.
type Record struct {
	SessionID   string    `json:"session_id"`
	Article     string    `json:"article,omitempty"`
	ChunkIndex  int       `json:"chunk_index"`
	TotalChunks int       `json:"total_chunks"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Reporter pushes progress records to the store over HTTP.
type Reporter struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewReporter builds a reporter for the given store. An empty baseURL
// returns nil, which callers treat as "progress reporting disabled".
func NewReporter(baseURL, apiKey string) *Reporter {
	if baseURL == "" {
		return nil
	}
	return &Reporter{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Report stores a record, retrying transient failures with backoff.
func (r *Reporter) Report(ctx context.Context, rec Record) error {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(Backoff(attempt - 1)):
			}
		}
		if lastErr = r.put(ctx, rec); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("report progress for %s: %w", rec.SessionID, lastErr)
}

func (r *Reporter) put(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		r.baseURL+"/progress/"+rec.SessionID, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("put progress: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated &&
		resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put progress: status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases idle connections.
func (r *Reporter) Close() {
	if r != nil {
		r.httpClient.CloseIdleConnections()
	}
}
