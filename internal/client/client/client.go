// Package client is a thin HTTP client for the docshare API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrRequestFailed wraps every non-2xx answer.
var ErrRequestFailed = errors.New("request failed")

type Example struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Fingerprint string `json:"fingerprint"`
}

type Session struct {
	DocumentID   string `json:"documentId"`
	ID           string `json:"id"`
	JWT          string `json:"jwt"`
	AssistantJWT string `json:"assistantJwt,omitempty"`
}

type ShareableID struct {
	DocumentID  string    `json:"documentId"`
	Layer       string    `json:"layer"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Examples    []Example `json:"examples"`
}

type DocshareClient struct {
	baseURL string
	http    *http.Client
}

func NewDocshareClient(baseURL string, httpClient *http.Client) *DocshareClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DocshareClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Examples lists the server's example catalog.
func (c *DocshareClient) Examples(ctx context.Context) ([]Example, error) {
	var out []Example
	err := c.do(ctx, http.MethodGet, "/api/examples", nil, "", &out)
	return out, err
}

// OpenExample negotiates a session for example, reusing previousID when set.
func (c *DocshareClient) OpenExample(ctx context.Context, example, previousID string) (*Session, error) {
	body := map[string]any{}
	if previousID != "" {
		body["previousDocumentId"] = previousID
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var out Session
	path := "/api/examples/" + url.PathEscape(example) + "/session"
	if err := c.do(ctx, http.MethodPost, path, bytes.NewReader(b), "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Resolve decodes a shareable id on the server.
func (c *DocshareClient) Resolve(ctx context.Context, id string) (*ShareableID, error) {
	var out ShareableID
	if err := c.do(ctx, http.MethodGet, "/api/shareable-ids/"+url.PathEscape(id), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload sends a local file and opens a session on it.
func (c *DocshareClient) Upload(ctx context.Context, path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out Session
	if err := c.do(ctx, http.MethodPost, "/api/documents", &buf, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *DocshareClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s; body: %s", ErrRequestFailed, resp.Status, strings.TrimSpace(string(b)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
