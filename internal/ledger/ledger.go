package ledger

import (
	"context"
	"encoding/json"
	"errors"
)

const (
	// ChainType identifies the ledger backing the article chain reference.
	ChainType = "arweave"
)

var (
	// ErrTxRejected is returned when the gateway does not acknowledge a transaction.
	ErrTxRejected = errors.New("ledger transaction rejected")
	// ErrTxNotFound is returned when a transaction id is unknown to the gateway.
	ErrTxNotFound = errors.New("ledger transaction not found")
)

// Tag is one name/value header attached to a ledger transaction.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Tx is a content-addressed ledger transaction.
type Tx struct {
	ID   string `json:"id,omitempty"`
	Data []byte `json:"data"`
	Tags []Tag  `json:"tags,omitempty"`
}

// Ledger submits and looks up append-only transactions. A SubmitTx return
// with a nil error means the ledger acknowledged the write; anything else
// must be treated as no write at all.
type Ledger interface {
	// SubmitTx submits a transaction and returns the acknowledged transaction id.
	SubmitTx(ctx context.Context, tx *Tx) (string, error)
	// GetTx retrieves a transaction by id.
	GetTx(ctx context.Context, id string) (*Tx, error)
}

// SerializeTags encodes tags for the audit row headers column.
func SerializeTags(tags []Tag) (string, error) {
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
