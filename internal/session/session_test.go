package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	v1 "github.com/emrgen/article/apis/v1"
	"github.com/emrgen/article/internal/ledger"
	"github.com/emrgen/article/internal/richtext"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFakeNotFound = errors.New("article not found")

type fakeBackend struct {
	mu       sync.Mutex
	articles map[string]*v1.Article
	records  map[string]*v1.ArTxRecord

	getCalls    int
	updateCalls int
	reportCalls int

	updateErr error
	reportErr error

	// when set, UpdateArticle blocks until the channel is closed
	updateGate chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		articles: make(map[string]*v1.Article),
		records:  make(map[string]*v1.ArTxRecord),
	}
}

func (f *fakeBackend) GetArticle(ctx context.Context, aid string) (*v1.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++

	article, ok := f.articles[aid]
	if !ok {
		return nil, errFakeNotFound
	}
	out := *article
	return &out, nil
}

func (f *fakeBackend) UpdateArticle(ctx context.Context, request *v1.UpdateArticleRequest) (*v1.UpdateArticleResponse, error) {
	f.mu.Lock()
	f.updateCalls++
	gate := f.updateGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return nil, f.updateErr
	}

	aid := request.AID
	if aid == "" {
		aid = uuid.New().String()
	}

	now := time.Now()
	f.articles[aid] = &v1.Article{
		AID:       aid,
		UID:       request.UID,
		Title:     request.Title,
		Poster:    request.Poster,
		Content:   request.Content,
		Tags:      request.Tags,
		Chain:     request.Chain,
		UpdatedAt: now,
	}

	return &v1.UpdateArticleResponse{AID: aid, UpdatedAt: now}, nil
}

func (f *fakeBackend) ReportUpchainTx(ctx context.Context, request *v1.ReportUpchainTxRequest) (*v1.ArTxRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reportCalls++

	if f.reportErr != nil {
		return nil, f.reportErr
	}

	record := &v1.ArTxRecord{
		TxID:        request.TxID,
		UID:         request.UID,
		ContentType: request.ContentType,
		Headers:     request.Headers,
		Content:     request.Content,
		MsgType:     request.MsgType,
	}
	f.records[request.TxID] = record
	return record, nil
}

type fakeLedger struct {
	submitErr error
	submitted int
	lastTx    *ledger.Tx
}

func (f *fakeLedger) SubmitTx(ctx context.Context, tx *ledger.Tx) (string, error) {
	f.submitted++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	f.lastTx = tx
	return "tx-" + uuid.New().String(), nil
}

func (f *fakeLedger) GetTx(ctx context.Context, id string) (*ledger.Tx, error) {
	return f.lastTx, nil
}

// longDoc builds a document whose serialized form clears the publish size
// threshold.
func longDoc(title string) *richtext.Doc {
	body := strings.Repeat("the quick brown fox jumps over the lazy dog ", 40)
	return &richtext.Doc{
		Children: []richtext.Node{
			&richtext.Heading{Level: 1, Children: []richtext.Node{&richtext.Text{Text: title}}},
			&richtext.Paragraph{Children: []richtext.Node{&richtext.Text{Text: body}}},
			&richtext.Image{Src: "https://img.example/poster.png"},
		},
	}
}

func shortDoc() *richtext.Doc {
	return &richtext.Doc{
		Children: []richtext.Node{
			&richtext.Paragraph{Children: []richtext.Node{&richtext.Text{Text: "hi"}}},
		},
	}
}

func TestSession_StartNewDraft(t *testing.T) {
	backend := newFakeBackend()
	sess := NewSession(backend, nil, "u1")

	err := sess.Start(context.TODO(), "")
	require.NoError(t, err)

	assert.Equal(t, StateReady, sess.State())
	assert.False(t, sess.ReadOnly())

	draft := sess.Draft()
	require.NotNil(t, draft)
	assert.Empty(t, draft.AID)
	assert.Equal(t, "u1", draft.UID)
	assert.Equal(t, richtext.DefaultTitle, draft.Title)
	assert.Equal(t, 0, backend.getCalls)
}

func TestSession_StartRejectsMalformedID(t *testing.T) {
	backend := newFakeBackend()
	sess := NewSession(backend, nil, "u1")

	err := sess.Start(context.TODO(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidArticleID)

	// rejected before any fetch
	assert.Equal(t, 0, backend.getCalls)
}

func TestSession_StartNotFoundIsTerminal(t *testing.T) {
	backend := newFakeBackend()
	sess := NewSession(backend, nil, "u1")

	err := sess.Start(context.TODO(), uuid.New().String())
	require.Error(t, err)

	assert.Equal(t, StateError, sess.State())
	assert.Error(t, sess.Err())

	err = sess.Publish(context.TODO(), PublishOptions{})
	assert.ErrorIs(t, err, ErrSessionFailed)
	assert.Equal(t, 0, backend.updateCalls)

	// terminal failures stay terminal, editing does not revive the session
	sess.Sync(longDoc("Still Dead"))
	assert.Equal(t, StateError, sess.State())
	assert.Error(t, sess.Err())
}

func TestSession_SyncDerivesMeta(t *testing.T) {
	backend := newFakeBackend()
	sess := NewSession(backend, nil, "u1")
	require.NoError(t, sess.Start(context.TODO(), ""))

	doc := longDoc("My First Post")
	before, err := richtext.Serialize(doc)
	require.NoError(t, err)

	sess.Sync(doc)
	sess.Sync(doc)

	draft := sess.Draft()
	assert.Equal(t, "My First Post", draft.Title)
	assert.Equal(t, "https://img.example/poster.png", draft.Poster)

	// derivation never mutates the document
	after, err := richtext.Serialize(doc)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSession_PublishAssignsAIDOnce(t *testing.T) {
	backend := newFakeBackend()
	sess := NewSession(backend, nil, "u1")
	require.NoError(t, sess.Start(context.TODO(), ""))
	sess.Sync(longDoc("My First Post"))

	err := sess.Publish(context.TODO(), PublishOptions{})
	require.NoError(t, err)

	assert.Equal(t, StatePublished, sess.State())

	draft := sess.Draft()
	aid := draft.AID
	_, err = uuid.Parse(aid)
	assert.NoError(t, err)
	assert.Len(t, backend.articles, 1)

	// a second publish from the same session updates the same record
	sess.Sync(longDoc("My First Post, Revised"))
	require.NoError(t, sess.Publish(context.TODO(), PublishOptions{}))

	draft = sess.Draft()
	assert.Equal(t, aid, draft.AID)
	assert.Len(t, backend.articles, 1)
	assert.Equal(t, 2, backend.updateCalls)
	assert.Equal(t, "My First Post, Revised", backend.articles[aid].Title)
}

func TestSession_PublishRejectsShortContent(t *testing.T) {
	backend := newFakeBackend()
	sess := NewSession(backend, nil, "u1")
	require.NoError(t, sess.Start(context.TODO(), ""))
	sess.Sync(shortDoc())

	err := sess.Publish(context.TODO(), PublishOptions{})
	assert.ErrorIs(t, err, ErrContentTooShort)

	// rejected before any network call
	assert.Equal(t, 0, backend.updateCalls)
	assert.Equal(t, 0, backend.reportCalls)
	assert.Equal(t, StateError, sess.State())
	assert.ErrorIs(t, sess.Err(), ErrContentTooShort)

	// the draft survives, editing clears the error and the publish can be retried
	sess.Sync(longDoc("Recovered"))
	assert.Equal(t, StateReady, sess.State())
	assert.NoError(t, sess.Err())

	require.NoError(t, sess.Publish(context.TODO(), PublishOptions{}))
	assert.Equal(t, StatePublished, sess.State())
	assert.Equal(t, "Recovered", sess.Draft().Title)
}

func TestSession_ReadOnlyForOtherOwner(t *testing.T) {
	backend := newFakeBackend()
	aid := uuid.New().String()
	backend.articles[aid] = &v1.Article{
		AID:       aid,
		UID:       "u1",
		Title:     "Owned by u1",
		Content:   "{}",
		UpdatedAt: time.Now(),
	}

	sess := NewSession(backend, nil, "u2")
	require.NoError(t, sess.Start(context.TODO(), aid))

	assert.Equal(t, StateReady, sess.State())
	assert.True(t, sess.ReadOnly())

	err := sess.Publish(context.TODO(), PublishOptions{})
	assert.ErrorIs(t, err, ErrReadOnlySession)
	assert.Equal(t, 0, backend.updateCalls)
}

func TestSession_LedgerFailureAbortsPublish(t *testing.T) {
	backend := newFakeBackend()
	chain := &fakeLedger{submitErr: errors.New("gateway down")}

	sess := NewSession(backend, chain, "u1")
	require.NoError(t, sess.Start(context.TODO(), ""))
	sess.Sync(longDoc("Mirrored"))

	err := sess.Publish(context.TODO(), PublishOptions{Mirror: true})
	require.Error(t, err)

	// no partial persistence: the upsert never ran
	assert.Equal(t, 0, backend.updateCalls)
	assert.Equal(t, 0, backend.reportCalls)
	assert.Equal(t, StateError, sess.State())
	assert.Empty(t, sess.Draft().AID)
}

func TestSession_AuditFailureAbortsPublish(t *testing.T) {
	backend := newFakeBackend()
	backend.reportErr = errors.New("audit row rejected")
	chain := &fakeLedger{}

	sess := NewSession(backend, chain, "u1")
	require.NoError(t, sess.Start(context.TODO(), ""))
	sess.Sync(longDoc("Mirrored"))

	err := sess.Publish(context.TODO(), PublishOptions{Mirror: true})
	require.Error(t, err)

	assert.Equal(t, 1, chain.submitted)
	assert.Equal(t, 0, backend.updateCalls)
}

func TestSession_MirrorBindsChainRef(t *testing.T) {
	backend := newFakeBackend()
	chain := &fakeLedger{}

	sess := NewSession(backend, chain, "u1")
	require.NoError(t, sess.Start(context.TODO(), ""))
	sess.Sync(longDoc("Mirrored"))

	require.NoError(t, sess.Publish(context.TODO(), PublishOptions{Mirror: true, Theme: "dark"}))

	draft := sess.Draft()
	require.NotEmpty(t, draft.Chain)

	var ref chainPayload
	require.NoError(t, json.Unmarshal([]byte(draft.Chain), &ref))
	assert.Equal(t, ledger.ChainType, ref.ChainType)
	assert.NotEmpty(t, ref.TxID)

	// snapshot was tagged for the ledger
	require.NotNil(t, chain.lastTx)
	tags := map[string]string{}
	for _, tag := range chain.lastTx.Tags {
		tags[tag.Name] = tag.Value
	}
	assert.Equal(t, "text/html", tags["Content-Type"])
	assert.Equal(t, "Mirrored", tags["Title"])
	assert.Equal(t, "file", tags["Type"])

	record, ok := backend.records[ref.TxID]
	require.True(t, ok)
	assert.Equal(t, MsgTypeArticle, record.MsgType)
	assert.Contains(t, string(record.Content), "<h1>Mirrored</h1>")
	assert.Contains(t, string(record.Content), `data-theme="dark"`)
}

func TestSession_ConcurrentPublishRejected(t *testing.T) {
	backend := newFakeBackend()
	backend.updateGate = make(chan struct{})

	sess := NewSession(backend, nil, "u1")
	require.NoError(t, sess.Start(context.TODO(), ""))
	sess.Sync(longDoc("Busy"))

	done := make(chan error, 1)
	go func() {
		done <- sess.Publish(context.TODO(), PublishOptions{})
	}()

	// wait for the first publish to reach the backend
	require.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.updateCalls == 1
	}, time.Second, 5*time.Millisecond)

	err := sess.Publish(context.TODO(), PublishOptions{})
	assert.ErrorIs(t, err, ErrPublishInFlight)

	close(backend.updateGate)
	require.NoError(t, <-done)
	assert.Equal(t, StatePublished, sess.State())
}

func TestDraft_RoundTrip(t *testing.T) {
	doc := longDoc("Round Trip")
	draft := &Draft{
		UID:   "u1",
		Title: "Round Trip",
		Doc:   doc,
		Tags:  map[string][]string{"lang": {"go"}, "kind": {"post", "tech"}},
	}

	request, err := draft.toRequest("")
	require.NoError(t, err)

	record := &v1.Article{
		AID:     "ignored-here",
		UID:     request.UID,
		Title:   request.Title,
		Poster:  request.Poster,
		Content: request.Content,
		Tags:    request.Tags,
	}

	back, err := draftFromRecord(record)
	require.NoError(t, err)

	assert.Equal(t, draft.Title, back.Title)
	assert.Equal(t, draft.Tags, back.Tags)

	want, err := richtext.Serialize(draft.Doc)
	require.NoError(t, err)
	got, err := richtext.Serialize(back.Doc)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}
