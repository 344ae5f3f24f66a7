package store

import (
	"errors"
)

var (
	ErrStoreNotFound      = errors.New("store not found")
	ErrArticleNotFound    = errors.New("article not found")
	ErrArTxRecordNotFound = errors.New("ledger record not found")
	ErrUserNotFound       = errors.New("user not found")
)

type StoreProvider interface {
	Provide() (Store, error)
}

type DefaultProvider struct {
	store Store
}

func NewDefaultProvider(store Store) *DefaultProvider {
	return &DefaultProvider{store: store}
}

func (p *DefaultProvider) Provide() (Store, error) {
	if p.store == nil {
		return nil, ErrStoreNotFound
	}

	return p.store, nil
}
