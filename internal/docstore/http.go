// Package docstore writes promoted reports into the remote document
// database. The pipeline only ever adds documents; reads stay with the live
// feed surfaces.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reportsync/internal/report"
)

// HTTPStore implements report.DocumentStore against a JSON-over-HTTP
// document API: POST <endpoint>/<collection> with {"fields": {...}} answers
// {"id": "..."}. The server assigns the creation timestamp.
type HTTPStore struct {
	endpoint string
	client   *http.Client
	timeout  time.Duration
}

var _ report.DocumentStore = (*HTTPStore)(nil)

// NewHTTPStore creates a store client for the given base endpoint.
// client may be nil for http.DefaultClient.
func NewHTTPStore(endpoint string, client *http.Client) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   client,
		timeout:  30 * time.Second,
	}
}

func (s *HTTPStore) AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error) {
	payload, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return "", fmt.Errorf("encoding document: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := s.endpoint + "/" + collection
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting document: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("document write failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding document response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("document response contains no id")
	}

	return parsed.ID, nil
}
