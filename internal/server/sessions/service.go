// Package sessions negotiates viewer sessions: it decides which remote
// document backs a request, re-uploading the example's canonical file only
// when no known document is still alive, and mints the capability token for
// the chosen document/layer pair.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/dmitrijs2005/docshare/internal/server/config"
	"github.com/dmitrijs2005/docshare/internal/server/docengine"
	"github.com/dmitrijs2005/docshare/internal/server/examples"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/associations"
	"github.com/dmitrijs2005/docshare/internal/shareid"
)

// DocumentEngine is the remote document store.
type DocumentEngine interface {
	Upload(ctx context.Context, r io.Reader, filename, documentID string) (string, error)
	Properties(ctx context.Context, documentID string) (docengine.Properties, error)
}

// TokenIssuer mints the tokens returned with a session.
type TokenIssuer interface {
	IssueCollaborationToken(documentID, layerName string, extraClaims map[string]any) (string, error)
	IssueAssistantToken(documentID string) (string, bool, error)
}

// Catalog resolves example names and fingerprints.
type Catalog interface {
	Lookup(name string) (examples.Example, error)
	ByFingerprint(fp string) []examples.Example
}

// Session is the result of a negotiation.
type Session struct {
	DocumentID     string
	ShareableID    string
	LayerName      string
	Token          string
	AssistantToken string
}

// Service negotiates sessions. The association repository is its only
// shared mutable state; two cold negotiations for the same example may
// both upload and the last Set wins, which the document engine tolerates
// by deduplicating identical content.
type Service struct {
	engine        DocumentEngine
	issuer        TokenIssuer
	catalog       Catalog
	source        examples.Source
	associations  associations.Repository
	logger        logging.Logger
	remoteTimeout time.Duration
}

func NewService(engine DocumentEngine, issuer TokenIssuer, catalog Catalog, source examples.Source,
	repo associations.Repository, logger logging.Logger, cfg *config.Config) *Service {
	return &Service{
		engine:        engine,
		issuer:        issuer,
		catalog:       catalog,
		source:        source,
		associations:  repo,
		logger:        logger.With("module", "sessions"),
		remoteTimeout: cfg.RemoteTimeout,
	}
}

// Negotiate returns a session for exampleName. previousID, when not empty,
// is a shareable id handed out earlier; its document and layer are reused
// while the document still exists. An id without this example's
// fingerprint refers to a user document, which cannot be regenerated: if it
// is gone the result is common.ErrDocumentGone.
func (s *Service) Negotiate(ctx context.Context, exampleName, previousID string, extraClaims map[string]any) (*Session, error) {
	example, err := s.catalog.Lookup(exampleName)
	if err != nil {
		return nil, err
	}

	var (
		documentID string
		layerName  string
		custom     bool
		fromCache  bool
	)

	if previousID != "" {
		prev, err := shareid.Decode(previousID)
		if err != nil {
			return nil, err
		}
		custom = prev.ExampleFingerprint != example.Fingerprint()
		documentID, layerName = prev.DocumentID, prev.LayerName
	} else {
		cached, ok, err := s.associations.Get(ctx, example.Name)
		if err != nil {
			return nil, fmt.Errorf("reading cached document: %w", err)
		}
		documentID, fromCache = cached, ok
	}

	if documentID != "" {
		if err := s.checkExists(ctx, documentID); err != nil {
			if custom {
				if engineAnswered(err) {
					return nil, fmt.Errorf("%w: %s: %w", common.ErrDocumentGone, documentID, err)
				}
				return nil, err
			}
			s.logger.Warn(ctx, "document no longer available, re-uploading",
				"example", example.Name, "document_id", documentID, "error", err)
			if fromCache {
				if err := s.associations.Delete(context.WithoutCancel(ctx), example.Name); err != nil {
					return nil, fmt.Errorf("invalidating cached document: %w", err)
				}
			}
			documentID = ""
		}
	}

	uploaded := false
	if documentID == "" {
		documentID, err = s.uploadExample(ctx, example)
		if err != nil {
			return nil, err
		}
		if err := s.associations.Set(context.WithoutCancel(ctx), example.Name, documentID); err != nil {
			return nil, fmt.Errorf("caching document: %w", err)
		}
		uploaded = true
	}

	if layerName == "" {
		layerName = shareid.GenerateLayerName()
	}

	fingerprintSource := example.Name
	if custom {
		fingerprintSource = ""
	}

	session, err := s.issue(documentID, layerName, shareid.Encode(documentID, layerName, fingerprintSource), extraClaims)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "session negotiated",
		"example", example.Name, "document_id", documentID, "custom", custom, "uploaded", uploaded)

	return session, nil
}

// OpenCustom uploads a user document and starts a session on a fresh layer.
// The shareable id carries no fingerprint.
func (s *Service) OpenCustom(ctx context.Context, r io.Reader, filename string, extraClaims map[string]any) (*Session, error) {
	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	documentID, err := s.engine.Upload(rctx, r, filename, "")
	if err != nil {
		return nil, err
	}

	layerName := shareid.GenerateLayerName()
	session, err := s.issue(documentID, layerName, shareid.Encode(documentID, layerName, ""), extraClaims)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "custom document uploaded", "document_id", documentID, "filename", filename)
	return session, nil
}

// Resolve decodes id and lists the examples whose fingerprint matches it.
// Custom ids match nothing; colliding fingerprints may match several.
func (s *Service) Resolve(id string) (shareid.ID, []examples.Example, error) {
	decoded, err := shareid.Decode(id)
	if err != nil {
		return shareid.ID{}, nil, err
	}
	if decoded.IsCustom() {
		return decoded, nil, nil
	}
	return decoded, s.catalog.ByFingerprint(decoded.ExampleFingerprint), nil
}

// remoteContext bounds a document engine call. The caller's cancellation is
// deliberately detached: a started upload runs to completion or timeout.
func (s *Service) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.remoteTimeout)
}

func (s *Service) checkExists(ctx context.Context, documentID string) error {
	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	_, err := s.engine.Properties(rctx, documentID)
	return err
}

// engineAnswered reports whether err is the engine's own verdict rather than
// a timeout or transport failure.
func engineAnswered(err error) bool {
	var re *docengine.RemoteError
	var se *docengine.StatusError
	return errors.As(err, &re) || errors.As(err, &se)
}

func (s *Service) uploadExample(ctx context.Context, example examples.Example) (string, error) {
	rc, err := s.source.Open(ctx, example.File)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrUploadFailed, err)
	}
	defer rc.Close()

	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	return s.engine.Upload(rctx, rc, example.File, "")
}

func (s *Service) issue(documentID, layerName, shareableID string, extraClaims map[string]any) (*Session, error) {
	token, err := s.issuer.IssueCollaborationToken(documentID, layerName, extraClaims)
	if err != nil {
		return nil, err
	}

	session := &Session{
		DocumentID:  documentID,
		ShareableID: shareableID,
		LayerName:   layerName,
		Token:       token,
	}

	assistantToken, ok, err := s.issuer.IssueAssistantToken(documentID)
	if err != nil {
		return nil, err
	}
	if ok {
		session.AssistantToken = assistantToken
	}

	return session, nil
}
