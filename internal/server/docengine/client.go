// Package docengine talks to the remote document-storage service that holds
// PDF binaries. Only the two calls the session flow needs are implemented:
// multipart upload and the properties existence check.
package docengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/docshare/internal/common"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 1 << 20

// Properties is the metadata document returned by the properties endpoint.
type Properties map[string]any

type uploadResult struct {
	DocumentID string `json:"document_id"`
}

// Client is an HTTP client for the document engine API.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL, authToken string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: httpClient,
	}
}

// Upload streams r as a multipart file. documentID is optional and asks the
// engine to store the file under that id. Failures wrap common.ErrUploadFailed.
func (c *Client) Upload(ctx context.Context, r io.Reader, filename, documentID string) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(mw, r, filename, documentID))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents", pr)
	if err != nil {
		pr.Close()
		return "", fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := do[uploadResult](c, req)
	// unblocks the writer if the request ended before the body was consumed
	pr.Close()
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrUploadFailed, err)
	}
	if res.DocumentID == "" {
		return "", fmt.Errorf("%w: %w: empty document_id", common.ErrUploadFailed, common.ErrProtocol)
	}

	return res.DocumentID, nil
}

func writeUploadForm(mw *multipart.Writer, r io.Reader, filename, documentID string) error {
	if documentID != "" {
		if err := mw.WriteField("document_id", documentID); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	return mw.Close()
}

// Properties fetches document metadata. Any failure, including a well-formed
// error envelope, wraps common.ErrPropertiesCheckFailed and means the
// document cannot be relied upon to exist.
func (c *Client) Properties(ctx context.Context, documentID string) (Properties, error) {
	u := c.baseURL + "/api/documents/" + url.PathEscape(documentID) + "/properties"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPropertiesCheckFailed, err)
	}

	props, err := do[Properties](c, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPropertiesCheckFailed, err)
	}

	return *props, nil
}

func do[T any](c *Client, req *http.Request) (*T, error) {
	if c.authToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Token token="+c.authToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	payload, err := decodeEnvelope[T](b)
	if resp.StatusCode >= http.StatusBadRequest {
		var re *RemoteError
		if errors.As(err, &re) {
			return nil, re
		}
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	if err != nil {
		return nil, err
	}

	return payload, nil
}
