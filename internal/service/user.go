package service

import (
	"context"
	"errors"

	v1 "github.com/emrgen/article/apis/v1"
	"github.com/emrgen/article/internal/model"
	"github.com/emrgen/article/internal/store"
)

// NewUserService creates a new UserService.
func NewUserService(store store.Store) *UserService {
	return &UserService{
		store: store,
	}
}

// UserService mirrors identity provider accounts into the local user table.
type UserService struct {
	store store.Store
}

// CreateUser creates the local row for a provider account. Creating an
// existing uid is a no-op returning the stored row.
func (u *UserService) CreateUser(ctx context.Context, uid string) (*v1.User, error) {
	if uid == "" {
		return nil, ErrMissingField
	}

	existing, err := u.store.GetUser(ctx, uid)
	if err == nil {
		return userToAPI(existing), nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	user := &model.User{UID: uid}
	if err := u.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return userToAPI(user), nil
}

// GetUser retrieves a user by uid.
func (u *UserService) GetUser(ctx context.Context, uid string) (*v1.User, error) {
	user, err := u.store.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	return userToAPI(user), nil
}

// UpdateUser replaces the profile metadata of a user.
func (u *UserService) UpdateUser(ctx context.Context, uid, meta string) (*v1.User, error) {
	user, err := u.store.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	user.Meta = meta
	if err := u.store.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return userToAPI(user), nil
}

func userToAPI(user *model.User) *v1.User {
	return &v1.User{
		UID:       user.UID,
		Meta:      user.Meta,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
