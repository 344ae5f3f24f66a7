package service

import (
	"context"
	"testing"

	"github.com/emrgen/article/internal/store"
	"github.com/emrgen/article/internal/tester"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	client := NewUserService(store.NewGormStore(tester.TestDB()))
	uid := uuid.New().String()

	user, err := client.CreateUser(context.TODO(), uid)
	require.NoError(t, err)
	assert.Equal(t, uid, user.UID)

	// creating an existing uid returns the stored row
	again, err := client.CreateUser(context.TODO(), uid)
	require.NoError(t, err)
	assert.Equal(t, uid, again.UID)

	_, err = client.CreateUser(context.TODO(), "")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestUserService_UpdateUser(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	client := NewUserService(store.NewGormStore(tester.TestDB()))
	uid := uuid.New().String()

	_, err := client.CreateUser(context.TODO(), uid)
	require.NoError(t, err)

	updated, err := client.UpdateUser(context.TODO(), uid, `{"arweaveAddress":"addr"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"arweaveAddress":"addr"}`, updated.Meta)

	got, err := client.GetUser(context.TODO(), uid)
	require.NoError(t, err)
	assert.Equal(t, updated.Meta, got.Meta)

	_, err = client.GetUser(context.TODO(), uuid.New().String())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
