package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RemoteStore talks to a record service over its HTTP contract:
// GET/POST/PUT /records?collection=<name> and DELETE with an id query param.
type RemoteStore struct {
	baseURL string
	client  *http.Client
}

// NewRemoteStore creates a client for the record service at baseURL.
// A nil http.Client gets a default with a 15 second timeout.
func NewRemoteStore(baseURL string, client *http.Client) *RemoteStore {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RemoteStore{baseURL: baseURL, client: client}
}

func (s *RemoteStore) recordsURL(collection string) string {
	return fmt.Sprintf("%s/records?collection=%s", s.baseURL, url.QueryEscape(collection))
}

func (s *RemoteStore) List(ctx context.Context, collection string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.recordsURL(collection), nil)
	if err != nil {
		return nil, &UnavailableError{Op: "list", Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &UnavailableError{Op: "list", Err: err}
	}
	defer resp.Body.Close()

	if err := classifyFailure("list", resp); err != nil {
		return nil, err
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &UnavailableError{Op: "list", Err: err}
	}
	return records, nil
}

func (s *RemoteStore) Create(ctx context.Context, collection string, rec Record) error {
	return s.write(ctx, http.MethodPost, collection, rec)
}

func (s *RemoteStore) Update(ctx context.Context, collection string, rec Record) error {
	return s.write(ctx, http.MethodPut, collection, rec)
}

func (s *RemoteStore) write(ctx context.Context, method, collection string, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return &UnavailableError{Op: "write", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.recordsURL(collection), bytes.NewReader(body))
	if err != nil {
		return &UnavailableError{Op: "write", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &UnavailableError{Op: "write", Err: err}
	}
	defer resp.Body.Close()

	return classifyFailure("write", resp)
}

func (s *RemoteStore) Delete(ctx context.Context, collection, id string) error {
	deleteURL := s.recordsURL(collection) + "&id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, deleteURL, nil)
	if err != nil {
		return &UnavailableError{Op: "delete", Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &UnavailableError{Op: "delete", Err: err}
	}
	defer resp.Body.Close()

	return classifyFailure("delete", resp)
}

// classifyFailure maps a non-2xx response to a ServiceError when the service
// sent a structured {"error": ...} payload, and to an UnavailableError for
// everything else (proxies, timeouts, HTML error pages).
func classifyFailure(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return &ServiceError{Status: resp.StatusCode, Message: payload.Error}
	}
	return &UnavailableError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
}
