package model

import (
	"time"
)

// ArTxRecord is the local audit row for a successful ledger write.
// Created exactly once per acknowledged transaction and never mutated.
type ArTxRecord struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	TxID        string    `gorm:"uniqueIndex;not null;column:tx_id"`
	UID         string    `gorm:"uuid;not null;index:idx_ar_tx_record_uid;column:uid"`
	ContentType string    `gorm:"not null"`
	Headers     string    // serialized ledger tag headers
	Content     []byte    // raw snapshot bytes as submitted to the ledger
	Compression string    // codec used for the content column
	MsgType     string    `gorm:"index:idx_ar_tx_record_msg_type"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (ArTxRecord) TableName() string {
	return "ar_tx_record"
}
