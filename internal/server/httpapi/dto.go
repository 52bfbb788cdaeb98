package httpapi

import "github.com/dmitrijs2005/docshare/internal/server/examples"

// ErrorResponse is returned for client errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SessionRequest is the body of the session endpoint. Both fields are
// optional.
type SessionRequest struct {
	PreviousDocumentID string         `json:"previousDocumentId"`
	JWTParameters      map[string]any `json:"jwtParameters"`
}

// SessionResponse describes a negotiated session.
type SessionResponse struct {
	DocumentID   string `json:"documentId"`
	ID           string `json:"id"`
	JWT          string `json:"jwt"`
	AssistantJWT string `json:"assistantJwt,omitempty"`
}

// ExampleResponse is one catalog entry.
type ExampleResponse struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Fingerprint string `json:"fingerprint"`
}

// ShareableIDResponse is a decoded shareable id with the examples it may
// have been generated from.
type ShareableIDResponse struct {
	DocumentID  string            `json:"documentId"`
	Layer       string            `json:"layer"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Examples    []ExampleResponse `json:"examples"`
}

type CoverImageTokenRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	Layer      string `json:"layer"`
}

type ProcessingTokenRequest struct {
	AllowedOperations []string `json:"allowedOperations" binding:"required"`
}

type TokenResponse struct {
	JWT string `json:"jwt"`
}

func toExampleResponses(list []examples.Example) []ExampleResponse {
	out := make([]ExampleResponse, 0, len(list))
	for _, e := range list {
		out = append(out, ExampleResponse{Name: e.Name, Title: e.Title, Fingerprint: e.Fingerprint()})
	}
	return out
}
