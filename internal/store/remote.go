package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Remote talks to a proxyconf serve instance (or any gateway exposing the
// same document API). Failures come back verbatim as StatusError; retrying
// is the caller's business.
type Remote struct {
	base   string
	token  string
	client *http.Client
}

func NewRemote(base, token string) *Remote {
	return &Remote{
		base:   strings.TrimRight(base, "/"),
		token:  token,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// StatusError carries the transport failure through unchanged: status and
// response body, no interpretation.
type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("remote store: status %d: %s", e.Code, strings.TrimSpace(e.Body))
}

func (r *Remote) Load() (map[string]any, error) {
	return r.roundTrip(http.MethodGet, "/api/config", nil)
}

func (r *Remote) Save(doc map[string]any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = r.roundTrip(http.MethodPut, "/api/config", b)
	return err
}

func (r *Remote) Reset() (map[string]any, error) {
	return r.roundTrip(http.MethodPost, "/api/config/reset", nil)
}

func (r *Remote) roundTrip(method, path string, body []byte) (map[string]any, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, r.base+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, StatusError{Code: resp.StatusCode, Body: string(raw)}
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
