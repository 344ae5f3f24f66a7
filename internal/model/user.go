package model

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors the identity provider account. The uid comes from the
// provider and is the authorization subject for article ownership.
type User struct {
	UID       string `gorm:"primaryKey;not null;column:uid"`
	Meta      string // serialized profile metadata, e.g. ledger wallet address
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
