package session

import "errors"

var (
	// ErrInvalidArticleID is returned when an id does not look like a uuid.
	// The session rejects it before any fetch.
	ErrInvalidArticleID = errors.New("invalid article id, expected a valid uuid")
	// ErrSessionNotReady is returned when an operation needs a populated draft.
	ErrSessionNotReady = errors.New("session is not ready")
	// ErrSessionFailed is returned when the session hit a terminal load error.
	ErrSessionFailed = errors.New("session failed to load")
	// ErrReadOnlySession is returned when a viewer tries to publish an
	// article they do not own.
	ErrReadOnlySession = errors.New("session is read-only")
	// ErrPublishInFlight is returned when a publish is already running.
	ErrPublishInFlight = errors.New("a publish is already in flight")
	// ErrContentTooShort is returned when the draft is too small to publish.
	ErrContentTooShort = errors.New("article content is too short to publish")
)
