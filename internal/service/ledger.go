package service

import (
	"context"
	"fmt"

	v1 "github.com/emrgen/article/apis/v1"
	"github.com/emrgen/article/internal/compress"
	"github.com/emrgen/article/internal/model"
	"github.com/emrgen/article/internal/store"
	"github.com/go-playground/validator/v10"
)

// NewLedgerService creates a new LedgerService. The codec name selects the
// compression applied to audit row content before it hits storage.
func NewLedgerService(codec string, store store.Store) *LedgerService {
	return &LedgerService{
		codec:    codec,
		compress: compress.FromName(codec),
		store:    store,
		validate: validator.New(),
	}
}

// LedgerService implements the ledger audit RPC operations. Rows record
// acknowledged ledger writes; they are insert-once and never mutated.
type LedgerService struct {
	codec    string
	compress compress.Compress
	store    store.Store
	validate *validator.Validate
}

// ReportUpchainTx records an acknowledged ledger transaction.
func (l *LedgerService) ReportUpchainTx(ctx context.Context, request *v1.ReportUpchainTxRequest) (*v1.ArTxRecord, error) {
	if err := l.validate.Struct(request); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingField, err)
	}

	content, err := l.compress.Encode(request.Content)
	if err != nil {
		return nil, err
	}

	record := &model.ArTxRecord{
		TxID:        request.TxID,
		UID:         request.UID,
		ContentType: request.ContentType,
		Headers:     request.Headers,
		Content:     content,
		Compression: l.codec,
		MsgType:     request.MsgType,
	}

	if err := l.store.CreateArTxRecord(ctx, record); err != nil {
		return nil, err
	}

	return &v1.ArTxRecord{
		ID:          record.ID,
		TxID:        record.TxID,
		UID:         record.UID,
		ContentType: record.ContentType,
		Headers:     record.Headers,
		Content:     request.Content,
		MsgType:     record.MsgType,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// GetUpchainTx retrieves one ledger audit row by transaction id.
func (l *LedgerService) GetUpchainTx(ctx context.Context, txID string) (*v1.ArTxRecord, error) {
	record, err := l.store.GetArTxRecord(ctx, txID)
	if err != nil {
		return nil, err
	}

	content, err := compress.FromName(record.Compression).Decode(record.Content)
	if err != nil {
		return nil, err
	}

	return &v1.ArTxRecord{
		ID:          record.ID,
		TxID:        record.TxID,
		UID:         record.UID,
		ContentType: record.ContentType,
		Headers:     record.Headers,
		Content:     content,
		MsgType:     record.MsgType,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// GetUpchainTxs lists ledger audit rows by classification tag. The content
// payload is omitted from list responses.
func (l *LedgerService) GetUpchainTxs(ctx context.Context, msgType string) ([]*v1.ArTxRecord, error) {
	records, err := l.store.ListArTxRecordsByMsgType(ctx, msgType)
	if err != nil {
		return nil, err
	}

	out := make([]*v1.ArTxRecord, 0, len(records))
	for _, record := range records {
		out = append(out, &v1.ArTxRecord{
			ID:          record.ID,
			TxID:        record.TxID,
			UID:         record.UID,
			ContentType: record.ContentType,
			Headers:     record.Headers,
			MsgType:     record.MsgType,
			CreatedAt:   record.CreatedAt,
		})
	}

	return out, nil
}
