package service

import (
	"context"
	"strings"
	"testing"

	v1 "github.com/emrgen/article/apis/v1"
	"github.com/emrgen/article/internal/compress"
	"github.com/emrgen/article/internal/store"
	"github.com/emrgen/article/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_ReportUpchainTx(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	client := NewLedgerService(compress.NameGZip, store.NewGormStore(tester.TestDB()))
	uid := uuid.New().String()
	txID := "tx-" + uuid.New().String()
	snapshot := []byte("<!DOCTYPE html><html><body>" + strings.Repeat("content ", 100) + "</body></html>")

	record, err := client.ReportUpchainTx(context.TODO(), &v1.ReportUpchainTxRequest{
		TxID:        txID,
		UID:         uid,
		ContentType: "text/html",
		Headers:     `[{"name":"Content-Type","value":"text/html"}]`,
		Content:     snapshot,
		MsgType:     "article",
	})
	require.NoError(t, err)
	assert.Equal(t, txID, record.TxID)
	assert.Equal(t, snapshot, record.Content)

	// content comes back decoded regardless of the storage codec
	got, err := client.GetUpchainTx(context.TODO(), txID)
	require.NoError(t, err)
	assert.Equal(t, snapshot, got.Content)
	assert.Equal(t, "text/html", got.ContentType)
	assert.Equal(t, uid, got.UID)
}

func TestLedgerService_ReportUpchainTx_MissingFields(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	client := NewLedgerService(compress.NameGZip, store.NewGormStore(tester.TestDB()))

	_, err := client.ReportUpchainTx(context.TODO(), &v1.ReportUpchainTxRequest{
		TxID: "tx-1",
	})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestLedgerService_GetUpchainTx_NotFound(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	client := NewLedgerService(compress.NameGZip, store.NewGormStore(tester.TestDB()))

	_, err := client.GetUpchainTx(context.TODO(), "tx-missing")
	assert.ErrorIs(t, err, store.ErrArTxRecordNotFound)
}

func TestLedgerService_GetUpchainTxs(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	client := NewLedgerService(compress.NameBrotli, store.NewGormStore(tester.TestDB()))
	uid := uuid.New().String()

	for i := 0; i < 3; i++ {
		_, err := client.ReportUpchainTx(context.TODO(), &v1.ReportUpchainTxRequest{
			TxID:        "tx-" + uuid.New().String(),
			UID:         uid,
			ContentType: "text/html",
			Headers:     `[]`,
			Content:     []byte("<html></html>"),
			MsgType:     "article",
		})
		require.NoError(t, err)
	}

	records, err := client.GetUpchainTxs(context.TODO(), "article")
	require.NoError(t, err)
	require.Len(t, records, 3)

	// list responses omit the raw content
	for _, record := range records {
		assert.Empty(t, record.Content)
		assert.Equal(t, "article", record.MsgType)
	}

	records, err = client.GetUpchainTxs(context.TODO(), "other")
	require.NoError(t, err)
	assert.Empty(t, records)
}
