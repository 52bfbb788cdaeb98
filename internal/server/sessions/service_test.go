package sessions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/docshare/internal/common"
	"github.com/dmitrijs2005/docshare/internal/logging"
	"github.com/dmitrijs2005/docshare/internal/server/config"
	"github.com/dmitrijs2005/docshare/internal/server/docengine"
	"github.com/dmitrijs2005/docshare/internal/server/examples"
	"github.com/dmitrijs2005/docshare/internal/server/repositories/associations"
	"github.com/dmitrijs2005/docshare/internal/shareid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- test logger ----

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// ---- fakes ----

type fakeEngine struct {
	mu        sync.Mutex
	existing  map[string]bool
	uploads   []string
	nextID    int
	uploadErr error
	block     bool
	propBlock bool
}

func newFakeEngine(existing ...string) *fakeEngine {
	e := &fakeEngine{existing: make(map[string]bool)}
	for _, id := range existing {
		e.existing[id] = true
	}
	return e
}

func (e *fakeEngine) Upload(ctx context.Context, r io.Reader, filename, documentID string) (string, error) {
	if e.block {
		<-ctx.Done()
		return "", errors.Join(common.ErrUploadFailed, ctx.Err())
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.uploadErr != nil {
		return "", e.uploadErr
	}
	b, _ := io.ReadAll(r)
	e.uploads = append(e.uploads, filename+":"+string(b))
	e.nextID++
	id := "doc-" + string(rune('0'+e.nextID))
	e.existing[id] = true
	return id, nil
}

func (e *fakeEngine) Properties(ctx context.Context, documentID string) (docengine.Properties, error) {
	if e.propBlock {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", common.ErrPropertiesCheckFailed, ctx.Err())
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.existing[documentID] {
		return nil, fmt.Errorf("%w: %w", common.ErrPropertiesCheckFailed, &docengine.RemoteError{Reason: "document_not_found"})
	}
	return docengine.Properties{"title": documentID}, nil
}

func (e *fakeEngine) uploadCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.uploads)
}

// ctxAwareRepository rejects writes made with a done context, like a
// network-backed store would.
type ctxAwareRepository struct {
	*associations.MemoryRepository
}

func (r ctxAwareRepository) Delete(ctx context.Context, example string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.MemoryRepository.Delete(ctx, example)
}

func (r ctxAwareRepository) Set(ctx context.Context, example, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.MemoryRepository.Set(ctx, example, documentID)
}

type issued struct {
	documentID string
	layerName  string
	extra      map[string]any
}

type fakeIssuer struct {
	mu           sync.Mutex
	calls        []issued
	err          error
	assistant    bool
	assistantErr error
}

func (f *fakeIssuer) IssueCollaborationToken(documentID, layerName string, extra map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, issued{documentID, layerName, extra})
	if f.err != nil {
		return "", f.err
	}
	return "jwt:" + documentID + ":" + layerName, nil
}

func (f *fakeIssuer) IssueAssistantToken(documentID string) (string, bool, error) {
	if f.assistantErr != nil {
		return "", false, f.assistantErr
	}
	if !f.assistant {
		return "", false, nil
	}
	return "aia:" + documentID, true, nil
}

type memSource map[string]string

func (m memSource) Open(_ context.Context, file string) (io.ReadCloser, error) {
	body, ok := m[file]
	if !ok {
		return nil, errors.New("no such file")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type fixture struct {
	svc    *Service
	engine *fakeEngine
	issuer *fakeIssuer
	assoc  *associations.MemoryRepository
}

func newFixture(t *testing.T, engine *fakeEngine) *fixture {
	t.Helper()

	catalog, err := examples.NewRegistry([]examples.Example{
		{Name: "hello", Title: "Hello", File: "hello.pdf"},
		{Name: "forms", Title: "Forms", File: "forms.pdf"},
	})
	require.NoError(t, err)

	issuer := &fakeIssuer{}
	assoc := associations.NewMemoryRepository()
	cfg := &config.Config{RemoteTimeout: time.Second}

	svc := NewService(engine, issuer, catalog, memSource{"hello.pdf": "%PDF-hello", "forms.pdf": "%PDF-forms"}, assoc, nopLogger{}, cfg)
	return &fixture{svc: svc, engine: engine, issuer: issuer, assoc: assoc}
}

func cached(t *testing.T, r associations.Repository, name string) (string, bool) {
	t.Helper()
	id, ok, err := r.Get(context.Background(), name)
	require.NoError(t, err)
	return id, ok
}

// ---- tests ----

func TestNegotiate_ColdStart(t *testing.T) {
	f := newFixture(t, newFakeEngine())

	s, err := f.svc.Negotiate(context.Background(), "hello", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, f.engine.uploadCount())
	assert.Equal(t, []string{"hello.pdf:%PDF-hello"}, f.engine.uploads)

	id, err := shareid.Decode(s.ShareableID)
	require.NoError(t, err)
	assert.Equal(t, shareid.Fingerprint("hello"), id.ExampleFingerprint)
	assert.Equal(t, s.DocumentID, id.DocumentID)
	assert.Equal(t, s.LayerName, id.LayerName)
	assert.Equal(t, "jwt:"+s.DocumentID+":"+s.LayerName, s.Token)
	assert.Empty(t, s.AssistantToken)

	docID, ok := cached(t, f.assoc, "hello")
	assert.True(t, ok)
	assert.Equal(t, s.DocumentID, docID)
}

func TestNegotiate_WarmReuse(t *testing.T) {
	f := newFixture(t, newFakeEngine())
	ctx := context.Background()

	first, err := f.svc.Negotiate(ctx, "hello", "", nil)
	require.NoError(t, err)
	second, err := f.svc.Negotiate(ctx, "hello", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, f.engine.uploadCount(), "second negotiation must hit the cache")
	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.NotEqual(t, first.LayerName, second.LayerName, "a new layer is generated when none is supplied")
}

func TestNegotiate_ValidPreviousID(t *testing.T) {
	f := newFixture(t, newFakeEngine("doc-7"))
	prev := shareid.Encode("doc-7", "layer-abc", "hello")

	s, err := f.svc.Negotiate(context.Background(), "hello", prev, map[string]any{"user_id": "alice"})
	require.NoError(t, err)

	assert.Equal(t, 0, f.engine.uploadCount())
	assert.Equal(t, "doc-7", s.DocumentID)
	assert.Equal(t, "layer-abc", s.LayerName)
	assert.Equal(t, prev, s.ShareableID)

	require.Len(t, f.issuer.calls, 1)
	assert.Equal(t, map[string]any{"user_id": "alice"}, f.issuer.calls[0].extra)
}

func TestNegotiate_StaleCustomDocument(t *testing.T) {
	f := newFixture(t, newFakeEngine())
	prev := shareid.Encode("gone-doc", "layer-abc", "")

	_, err := f.svc.Negotiate(context.Background(), "hello", prev, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrDocumentGone))

	assert.Equal(t, 0, f.engine.uploadCount())
	_, ok := cached(t, f.assoc, "hello")
	assert.False(t, ok, "cache must stay untouched")
}

func TestNegotiate_CustomDocumentCheckTimeoutIsNotGone(t *testing.T) {
	engine := newFakeEngine("user-doc")
	engine.propBlock = true
	f := newFixture(t, engine)
	f.svc.remoteTimeout = 20 * time.Millisecond
	prev := shareid.Encode("user-doc", "layer-abc", "")

	_, err := f.svc.Negotiate(context.Background(), "hello", prev, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrPropertiesCheckFailed))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, common.ErrDocumentGone))
	assert.Equal(t, 0, f.engine.uploadCount())
}

func TestNegotiate_ValidCustomDocumentKeepsCustomID(t *testing.T) {
	f := newFixture(t, newFakeEngine("user-doc"))
	prev := shareid.Encode("user-doc", "layer-abc", "")

	s, err := f.svc.Negotiate(context.Background(), "hello", prev, nil)
	require.NoError(t, err)

	assert.Equal(t, prev, s.ShareableID)
	assert.Equal(t, 0, f.engine.uploadCount())
}

func TestNegotiate_IDFromOtherExampleIsCustom(t *testing.T) {
	f := newFixture(t, newFakeEngine())
	prev := shareid.Encode("forms-doc", "layer", "forms")

	_, err := f.svc.Negotiate(context.Background(), "hello", prev, nil)
	assert.True(t, errors.Is(err, common.ErrDocumentGone))
}

func TestNegotiate_StaleCanonicalPreviousIDReuploadsAndKeepsLayer(t *testing.T) {
	f := newFixture(t, newFakeEngine())
	prev := shareid.Encode("expired-doc", "layer-abc", "hello")

	s, err := f.svc.Negotiate(context.Background(), "hello", prev, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, f.engine.uploadCount())
	assert.NotEqual(t, "expired-doc", s.DocumentID)
	assert.Equal(t, "layer-abc", s.LayerName)
	assert.Equal(t, shareid.Encode(s.DocumentID, "layer-abc", "hello"), s.ShareableID)

	docID, ok := cached(t, f.assoc, "hello")
	assert.True(t, ok)
	assert.Equal(t, s.DocumentID, docID)
}

func TestNegotiate_StaleCacheIsInvalidatedAndReplaced(t *testing.T) {
	f := newFixture(t, newFakeEngine())
	require.NoError(t, f.assoc.Set(context.Background(), "hello", "evicted-doc"))

	s, err := f.svc.Negotiate(context.Background(), "hello", "", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, f.engine.uploadCount())
	docID, ok := cached(t, f.assoc, "hello")
	assert.True(t, ok)
	assert.Equal(t, s.DocumentID, docID)
	assert.NotEqual(t, "evicted-doc", docID)
}

func TestNegotiate_StaleCacheInvalidatedDespiteCallerCancellation(t *testing.T) {
	f := newFixture(t, newFakeEngine())
	repo := ctxAwareRepository{associations.NewMemoryRepository()}
	f.svc.associations = repo
	require.NoError(t, repo.Set(context.Background(), "hello", "evicted-doc"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := f.svc.Negotiate(ctx, "hello", "", nil)
	require.NoError(t, err)

	docID, ok := cached(t, repo, "hello")
	assert.True(t, ok)
	assert.Equal(t, s.DocumentID, docID)
	assert.NotEqual(t, "evicted-doc", docID)
}

func TestNegotiate_UploadFailureLeavesCacheEmpty(t *testing.T) {
	engine := newFakeEngine()
	engine.uploadErr = errors.Join(common.ErrUploadFailed, errors.New("disk full"))
	f := newFixture(t, engine)

	_, err := f.svc.Negotiate(context.Background(), "hello", "", nil)
	assert.True(t, errors.Is(err, common.ErrUploadFailed))

	_, ok := cached(t, f.assoc, "hello")
	assert.False(t, ok)
}

func TestNegotiate_MissingSourceFileIsUploadFailure(t *testing.T) {
	engine := newFakeEngine()
	f := newFixture(t, engine)
	f.svc.source = memSource{}

	_, err := f.svc.Negotiate(context.Background(), "hello", "", nil)
	assert.True(t, errors.Is(err, common.ErrUploadFailed))
}

func TestNegotiate_MalformedPreviousID(t *testing.T) {
	f := newFixture(t, newFakeEngine())

	_, err := f.svc.Negotiate(context.Background(), "hello", "a.b.c.d", nil)
	assert.True(t, errors.Is(err, common.ErrMalformedIdentifier))
	assert.Equal(t, 0, f.engine.uploadCount())
}

func TestNegotiate_UnknownExample(t *testing.T) {
	f := newFixture(t, newFakeEngine())

	_, err := f.svc.Negotiate(context.Background(), "nope", "", nil)
	assert.True(t, errors.Is(err, common.ErrUnknownExample))
}

func TestNegotiate_IssuerErrorPropagates(t *testing.T) {
	f := newFixture(t, newFakeEngine())
	f.issuer.err = errors.New("sign failed")

	_, err := f.svc.Negotiate(context.Background(), "hello", "", nil)
	assert.EqualError(t, err, "sign failed")
}

func TestNegotiate_AssistantToken(t *testing.T) {
	f := newFixture(t, newFakeEngine())
	f.issuer.assistant = true

	s, err := f.svc.Negotiate(context.Background(), "hello", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "aia:"+s.DocumentID, s.AssistantToken)

	f.issuer.assistantErr = errors.New("assistant key broken")
	_, err = f.svc.Negotiate(context.Background(), "hello", "", nil)
	assert.Error(t, err)
}

func TestNegotiate_RemoteTimeout(t *testing.T) {
	engine := newFakeEngine()
	engine.block = true
	f := newFixture(t, engine)
	f.svc.remoteTimeout = 20 * time.Millisecond

	_, err := f.svc.Negotiate(context.Background(), "hello", "", nil)
	assert.True(t, errors.Is(err, common.ErrUploadFailed))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNegotiate_CallerCancellationDoesNotAbortUpload(t *testing.T) {
	f := newFixture(t, newFakeEngine())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := f.svc.Negotiate(ctx, "hello", "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.engine.uploadCount())

	docID, ok := cached(t, f.assoc, "hello")
	assert.True(t, ok)
	assert.Equal(t, s.DocumentID, docID)
}

func TestNegotiate_ConcurrentColdStartsConverge(t *testing.T) {
	f := newFixture(t, newFakeEngine())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Negotiate(context.Background(), "hello", "", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, f.engine.uploadCount(), 1)
	_, ok := cached(t, f.assoc, "hello")
	assert.True(t, ok)
}

func TestOpenCustom(t *testing.T) {
	f := newFixture(t, newFakeEngine())

	s, err := f.svc.OpenCustom(context.Background(), strings.NewReader("%PDF-mine"), "mine.pdf", nil)
	require.NoError(t, err)

	id, err := shareid.Decode(s.ShareableID)
	require.NoError(t, err)
	assert.True(t, id.IsCustom())
	assert.Equal(t, s.DocumentID, id.DocumentID)
	assert.Equal(t, []string{"mine.pdf:%PDF-mine"}, f.engine.uploads)

	_, ok := cached(t, f.assoc, "hello")
	assert.False(t, ok, "custom uploads are never cached")
}

func TestResolve(t *testing.T) {
	f := newFixture(t, newFakeEngine())

	id, matches, err := f.svc.Resolve(shareid.Encode("d", "l", "hello"))
	require.NoError(t, err)
	assert.Equal(t, "d", id.DocumentID)
	require.Len(t, matches, 1)
	assert.Equal(t, "hello", matches[0].Name)

	_, matches, err = f.svc.Resolve("d.l")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, _, err = f.svc.Resolve("d:l")
	assert.True(t, errors.Is(err, common.ErrMalformedIdentifier))
}
