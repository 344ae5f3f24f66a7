package service

import "errors"

var (
	// ErrInvalidArticleID is returned when an article id is not a canonical uuid.
	ErrInvalidArticleID = errors.New("invalid article id, expected a valid uuid")
	// ErrNotArticleOwner is returned when a caller mutates an article it does not own.
	ErrNotArticleOwner = errors.New("caller does not own the article")
	// ErrStaleArticleUpdate is returned when an update carries an updated_at
	// precondition that no longer matches the stored record.
	ErrStaleArticleUpdate = errors.New("article was updated by another session, please reload")
	// ErrArticleTagsCorrupted is returned when the tags column cannot be decoded.
	ErrArticleTagsCorrupted = errors.New("article tags are corrupted")
	// ErrMissingField is returned when a call omits a required field.
	ErrMissingField = errors.New("missing required field")
)
