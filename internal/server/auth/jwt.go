// Package auth mints the capability tokens handed to viewers: signed,
// time-boxed JWTs scoping what a client may do with a document/layer pair.
package auth

import (
	"crypto/rsa"
	"fmt"
	"maps"
	"time"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CollaborationTokenValidity = 3 * 24 * time.Hour
	ProcessingTokenValidity    = time.Hour
)

// Claim names shared with the document engine.
const (
	ClaimPermissions = "permissions"
	ClaimDocumentID  = "document_id"
	ClaimLayer       = "layer"
)

// Issuer signs capability tokens with RS256.
type Issuer struct {
	key          *rsa.PrivateKey
	assistantKey *rsa.PrivateKey
	assistantURL string
	keyOptional  bool
	now          func() time.Time
	newID        func() string
}

// Option customizes an Issuer.
type Option func(*Issuer)

// WithAssistant enables assistant tokens signed with key for the companion
// service at url.
func WithAssistant(url string, key *rsa.PrivateKey) Option {
	return func(i *Issuer) {
		i.assistantURL = url
		i.assistantKey = key
	}
}

// WithKeyOptional lets the issuer start without a signing key, for
// deployments with collaboration disabled. Signing then fails per call
// with common.ErrConfiguration.
func WithKeyOptional() Option {
	return func(i *Issuer) { i.keyOptional = true }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer validates the key material up front so a misconfigured process
// fails at startup rather than on its first request.
func NewIssuer(key *rsa.PrivateKey, opts ...Option) (*Issuer, error) {
	i := &Issuer{
		key:   key,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(i)
	}

	if i.key == nil && !i.keyOptional {
		return nil, fmt.Errorf("%w: JWT signing key is not set", common.ErrConfiguration)
	}
	if i.assistantURL != "" && i.assistantKey == nil {
		return nil, fmt.Errorf("%w: assistant URL %q is set but its signing key is missing", common.ErrConfiguration, i.assistantURL)
	}

	return i, nil
}

// IssueCollaborationToken grants read, write and download on the layer.
// Extra claims override permissions, document_id and layer; iat, exp and
// jti are always set by the issuer.
func (i *Issuer) IssueCollaborationToken(documentID, layerName string, extraClaims map[string]any) (string, error) {
	claims := jwt.MapClaims{
		ClaimPermissions: []string{common.PermissionReadDocument, common.PermissionWrite, common.PermissionDownload},
		ClaimDocumentID:  documentID,
		ClaimLayer:       layerName,
	}
	maps.Copy(claims, extraClaims)
	i.stamp(claims, CollaborationTokenValidity, true)

	return i.sign(i.key, claims)
}

// IssueCoverImageToken grants only cover image rendering. It carries no
// token id so identical URLs stay cacheable.
func (i *Issuer) IssueCoverImageToken(documentID, layerName string) (string, error) {
	claims := jwt.MapClaims{
		ClaimPermissions: []string{common.PermissionCoverImage},
		ClaimDocumentID:  documentID,
		ClaimLayer:       layerName,
	}
	i.stamp(claims, CollaborationTokenValidity, false)

	return i.sign(i.key, claims)
}

// IssueProcessingToken authorizes a single processing operation described
// by claims. Registered claims set here cannot be overridden.
func (i *Issuer) IssueProcessingToken(claims map[string]any) (string, error) {
	c := jwt.MapClaims{}
	maps.Copy(c, claims)
	i.stamp(c, ProcessingTokenValidity, true)

	return i.sign(i.key, c)
}

// AssistantEnabled reports whether assistant tokens can be issued.
func (i *Issuer) AssistantEnabled() bool {
	return i.assistantURL != ""
}

// IssueAssistantToken returns ok=false when no assistant is configured.
func (i *Issuer) IssueAssistantToken(documentID string) (token string, ok bool, err error) {
	if !i.AssistantEnabled() {
		return "", false, nil
	}

	claims := jwt.MapClaims{
		ClaimPermissions: []string{common.PermissionAssistant},
		ClaimDocumentID:  documentID,
	}
	i.stamp(claims, CollaborationTokenValidity, true)

	token, err = i.sign(i.assistantKey, claims)
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}

func (i *Issuer) stamp(claims jwt.MapClaims, validity time.Duration, withID bool) {
	now := i.now()
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(validity))
	if withID {
		claims["jti"] = i.newID()
	}
}

func (i *Issuer) sign(key *rsa.PrivateKey, claims jwt.MapClaims) (string, error) {
	if key == nil {
		return "", fmt.Errorf("%w: JWT signing key is not set", common.ErrConfiguration)
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return tokenString, nil
}
