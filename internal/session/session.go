// Package session implements the article edit/publish state machine. A
// session reconciles three representations of one article: the live editor
// document, the in-memory draft, and the persisted backend record, plus an
// optional append-only ledger mirror of the rendered article.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	v1 "github.com/emrgen/article/apis/v1"
	"github.com/emrgen/article/internal/ledger"
	"github.com/emrgen/article/internal/richtext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// minPublishSize is the minimum serialized content length for a publish.
	// Shorter drafts are rejected before any network call.
	minPublishSize = 1000

	// MsgTypeArticle classifies article snapshot rows in the ledger audit table.
	MsgTypeArticle = "article"

	publishUserAgent = "article-client/0.1"
)

// State of an edit session.
type State string

const (
	StateLoading    State = "loading"
	StateNewDraft   State = "new-draft"
	StateReady      State = "ready"
	StatePublishing State = "publishing"
	StatePublished  State = "published"
	StateError      State = "error"
)

// Backend is the RPC surface the session talks to.
type Backend interface {
	GetArticle(ctx context.Context, aid string) (*v1.Article, error)
	UpdateArticle(ctx context.Context, request *v1.UpdateArticleRequest) (*v1.UpdateArticleResponse, error)
	ReportUpchainTx(ctx context.Context, request *v1.ReportUpchainTxRequest) (*v1.ArTxRecord, error)
}

// PublishOptions select the optional ledger mirror for one publish.
type PublishOptions struct {
	// Mirror writes a rendered snapshot to the ledger before the backend
	// upsert. A ledger failure fails the whole publish.
	Mirror bool
	// Theme flag embedded in the rendered snapshot.
	Theme string
}

// Session owns one article edit operation from start to unmount.
//
// A session moves through loading (or new-draft), ready, publishing,
// published and error. Load failures are terminal; publish failures keep
// the draft intact so the user can retry. At most one publish runs at a
// time per session.
type Session struct {
	backend Backend
	ledger  ledger.Ledger
	uid     string

	mu       sync.Mutex
	state    State
	draft    *Draft
	err      error
	readOnly bool
	locked   bool
	inFlight bool
	terminal bool
}

// NewSession creates a session for the authenticated user uid. The ledger
// may be nil when mirroring is not configured; publishing with Mirror set
// then fails without touching the backend.
func NewSession(backend Backend, ledger ledger.Ledger, uid string) *Session {
	return &Session{
		backend: backend,
		ledger:  ledger,
		uid:     uid,
	}
}

// Start initializes the session. An empty aid starts a fresh draft with
// defaults. A present aid must be a canonical uuid; malformed ids are
// rejected before any fetch. A fetch failure, including not-found, is
// terminal for the session.
func (s *Session) Start(ctx context.Context, aid string) error {
	if aid == "" {
		s.mu.Lock()
		s.state = StateNewDraft
		s.draft = newDraft(s.uid)
		s.state = StateReady
		s.mu.Unlock()
		return nil
	}

	if _, err := uuid.Parse(aid); err != nil {
		return ErrInvalidArticleID
	}

	s.mu.Lock()
	s.state = StateLoading
	s.mu.Unlock()

	record, err := s.backend.GetArticle(ctx, aid)
	if err != nil {
		s.fail(err, true)
		return err
	}

	draft, err := draftFromRecord(record)
	if err != nil {
		s.fail(err, true)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// bulk replace of the draft, editor sync is suppressed meanwhile
	s.locked = true
	s.draft = draft
	s.locked = false

	if record.UID != s.uid {
		logrus.Infof("article %s is owned by %s, session is read-only", record.AID, record.UID)
		s.readOnly = true
	}

	s.state = StateReady
	return nil
}

// Sync replaces the draft document with the editor's current content and
// re-derives the title and poster projections. The derivation is pure:
// the same document always yields the same projections and the document is
// never mutated. Sync is a no-op while the draft is locked, read-only, or
// not yet populated, and after a terminal load failure. After a failed
// publish it applies the edit and folds the session back to ready.
func (s *Session) Sync(doc *richtext.Doc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locked || s.readOnly || s.draft == nil {
		return
	}
	switch s.state {
	case StateReady, StatePublished:
	case StateError:
		// a failed publish is recoverable by editing, a failed load is not
		if s.terminal {
			return
		}
	default:
		return
	}

	s.draft.Doc = doc
	meta := richtext.DeriveMeta(doc)
	s.draft.Title = meta.Title
	s.draft.Poster = meta.Poster

	// further edits after a publish or a publish failure resume the normal loop
	s.state = StateReady
	s.err = nil
}

// Publish pushes the draft to the backend, optionally mirroring a rendered
// snapshot to the ledger first. On creation the server-assigned aid is
// bound into the draft. Any failure leaves the draft unchanged so the
// publish can be retried.
func (s *Session) Publish(ctx context.Context, opts PublishOptions) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		return ErrReadOnlySession
	}
	if s.terminal {
		s.mu.Unlock()
		return ErrSessionFailed
	}
	if s.draft == nil || s.state == StateLoading {
		s.mu.Unlock()
		return ErrSessionNotReady
	}
	if s.inFlight {
		s.mu.Unlock()
		return ErrPublishInFlight
	}

	snapshot := s.draft.clone()
	s.inFlight = true
	s.state = StatePublishing
	s.mu.Unlock()

	response, chain, err := s.publish(ctx, snapshot, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		s.state = StateError
		s.err = err
		return err
	}

	if s.draft.AID == "" {
		s.draft.AID = response.AID
	}
	at := response.UpdatedAt
	s.draft.UpdatedAt = &at
	if chain != "" {
		s.draft.Chain = chain
	}

	s.state = StatePublished
	s.err = nil
	return nil
}

func (s *Session) publish(ctx context.Context, draft *Draft, opts PublishOptions) (*v1.UpdateArticleResponse, string, error) {
	content, err := richtext.Serialize(draft.Doc)
	if err != nil {
		return nil, "", err
	}

	if len(content) <= minPublishSize {
		return nil, "", ErrContentTooShort
	}

	var chain string
	if opts.Mirror {
		chain, err = s.mirror(ctx, draft, opts.Theme)
		if err != nil {
			return nil, "", fmt.Errorf("ledger mirror failed: %w", err)
		}
	}

	request, err := draft.toRequest(chain)
	if err != nil {
		return nil, "", err
	}

	response, err := s.backend.UpdateArticle(ctx, request)
	if err != nil {
		return nil, "", err
	}

	return response, chain, nil
}

// mirror writes a self-contained rendered snapshot to the ledger and, only
// after ledger acknowledgment, records the transaction in the audit table.
// The returned chain reference is persisted with the article by the caller.
func (s *Session) mirror(ctx context.Context, draft *Draft, theme string) (string, error) {
	if s.ledger == nil {
		return "", errors.New("no ledger configured")
	}

	snapshot := richtext.RenderHTML(draft.Doc, draft.Title, theme)
	tags := []ledger.Tag{
		{Name: "Content-Type", Value: "text/html"},
		{Name: "Title", Value: draft.Title},
		{Name: "Type", Value: "file"},
		{Name: "User-Agent", Value: publishUserAgent},
	}

	txID, err := s.ledger.SubmitTx(ctx, &ledger.Tx{Data: snapshot, Tags: tags})
	if err != nil {
		return "", err
	}

	headers, err := ledger.SerializeTags(tags)
	if err != nil {
		return "", err
	}

	if _, err := s.backend.ReportUpchainTx(ctx, &v1.ReportUpchainTxRequest{
		TxID:        txID,
		UID:         draft.UID,
		ContentType: "text/html",
		Headers:     headers,
		Content:     snapshot,
		MsgType:     MsgTypeArticle,
	}); err != nil {
		return "", err
	}

	ref, err := json.Marshal(chainPayload{TxID: txID, ChainType: ledger.ChainType})
	if err != nil {
		return "", err
	}

	return string(ref), nil
}

func (s *Session) fail(err error, terminal bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateError
	s.err = err
	s.terminal = s.terminal || terminal
}

// State reports the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err reports the error of the most recent failed transition, nil otherwise.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// ReadOnly reports whether the session belongs to a viewer who does not own
// the article. Read-only sessions never publish.
func (s *Session) ReadOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readOnly
}

// Draft returns a copy of the current draft, nil before Start populates it.
func (s *Session) Draft() *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return nil
	}
	return s.draft.clone()
}

// chainPayload mirrors the article chain column.
type chainPayload struct {
	TxID      string `json:"tx_id"`
	ChainType string `json:"chain_type"`
}
