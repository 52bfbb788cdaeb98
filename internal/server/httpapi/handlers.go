package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/dmitrijs2005/docshare/internal/server/examples"
	"github.com/dmitrijs2005/docshare/internal/server/sessions"
	"github.com/dmitrijs2005/docshare/internal/shareid"
	"github.com/gin-gonic/gin"
)

// SessionService is the part of sessions.Service the handlers use.
type SessionService interface {
	Negotiate(ctx context.Context, exampleName, previousID string, extraClaims map[string]any) (*sessions.Session, error)
	OpenCustom(ctx context.Context, r io.Reader, filename string, extraClaims map[string]any) (*sessions.Session, error)
	Resolve(id string) (shareid.ID, []examples.Example, error)
}

// TokenIssuer mints the tokens that are not tied to a session.
type TokenIssuer interface {
	IssueCoverImageToken(documentID, layerName string) (string, error)
	IssueProcessingToken(claims map[string]any) (string, error)
}

// ExampleLister lists the example catalog.
type ExampleLister interface {
	List() []examples.Example
}

// Handler serves the docshare HTTP API.
type Handler struct {
	sessions  SessionService
	issuer    TokenIssuer
	catalog   ExampleLister
	logger    logging.Logger
	serverURL string
}

// NewHandler creates a Handler. serverURL is embedded in processing tokens
// so the document engine knows where the request came from.
func NewHandler(s SessionService, i TokenIssuer, c ExampleLister, logger logging.Logger, serverURL string) *Handler {
	return &Handler{sessions: s, issuer: i, catalog: c, logger: logger, serverURL: serverURL}
}

// CreateSession handles POST /api/examples/:example/session
func (h *Handler) CreateSession(c *gin.Context) {
	// an empty body is a first visit
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	session, err := h.sessions.Negotiate(c.Request.Context(), c.Param("example"), req.PreviousDocumentID, req.JWTParameters)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

// UploadDocument handles POST /api/documents
func (h *Handler) UploadDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required", Details: err.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	defer f.Close()

	session, err := h.sessions.OpenCustom(c.Request.Context(), f, fh.Filename, nil)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

// ListExamples handles GET /api/examples
func (h *Handler) ListExamples(c *gin.Context) {
	c.JSON(http.StatusOK, toExampleResponses(h.catalog.List()))
}

// ResolveShareableID handles GET /api/shareable-ids/:id
func (h *Handler) ResolveShareableID(c *gin.Context) {
	id, matches, err := h.sessions.Resolve(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ShareableIDResponse{
		DocumentID:  id.DocumentID,
		Layer:       id.LayerName,
		Fingerprint: id.ExampleFingerprint,
		Examples:    toExampleResponses(matches),
	})
}

// CoverImageToken handles POST /api/cover-image-token
func (h *Handler) CoverImageToken(c *gin.Context) {
	var req CoverImageTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	token, err := h.issuer.IssueCoverImageToken(req.DocumentID, req.Layer)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{JWT: token})
}

// ProcessingToken handles POST /api/processing-token
func (h *Handler) ProcessingToken(c *gin.Context) {
	var req ProcessingTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	token, err := h.issuer.IssueProcessingToken(map[string]any{
		"allowed_operations": req.AllowedOperations,
		"server_url":         h.serverURL,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{JWT: token})
}

func toSessionResponse(s *sessions.Session) SessionResponse {
	return SessionResponse{
		DocumentID:   s.DocumentID,
		ID:           s.ShareableID,
		JWT:          s.Token,
		AssistantJWT: s.AssistantToken,
	}
}
