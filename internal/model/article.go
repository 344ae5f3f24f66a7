package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Article is a persisted article record. The aid is server generated and
// immutable once assigned; the uid never changes after creation.
type Article struct {
	AID       string `gorm:"primaryKey;uuid;not null;column:aid"`
	UID       string `gorm:"uuid;not null;index:idx_articles_uid;column:uid"`
	Title     string `gorm:"not null"`
	Poster    string
	Content   string `gorm:"not null"` // serialized rich-text document, opaque to the server
	Tags      string // serialized map of category key to tag list
	Chain     string // serialized ledger reference {tx_id, chain_type}, empty when not mirrored
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Article) TableName() string {
	return "articles"
}

// ChainRef is the optional ledger reference carried by an article.
type ChainRef struct {
	TxID      string `json:"tx_id"`
	ChainType string `json:"chain_type"`
}

// ChainRef decodes the chain column. Returns nil when the article has no
// ledger reference.
func (a *Article) ChainRef() (*ChainRef, error) {
	if a.Chain == "" {
		return nil, nil
	}
	var ref ChainRef
	if err := json.Unmarshal([]byte(a.Chain), &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

func (a *Article) MarshalBinary() ([]byte, error) {
	return json.Marshal(a)
}
