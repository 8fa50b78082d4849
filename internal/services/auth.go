package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pondo/internal/core"
	applog "pondo/internal/log"
	"pondo/internal/storage"
)

// ErrBadCredentials covers both an unknown username and a wrong password, so
// login failures do not reveal which one it was.
var ErrBadCredentials = fmt.Errorf("invalid username or password")

// AuthService handles registration, login and the per-user category set.
type AuthService struct {
	storage *storage.SQLiteRepository
}

func NewAuthService(storage *storage.SQLiteRepository) *AuthService {
	return &AuthService{storage: storage}
}

// Register validates the credentials and creates the user with the default
// category set. A taken username surfaces as core.ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (core.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := core.ValidateUsername(username); err != nil {
		return core.User{}, err
	}
	if err := core.ValidatePassword(password); err != nil {
		return core.User{}, err
	}
	if err := core.ValidateEmail(email); err != nil {
		return core.User{}, err
	}

	u := core.User{Username: username, Password: password, Email: email}
	id, err := s.storage.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, err
	}
	u.ID = id

	slog.InfoContext(ctx, "User registered", applog.FieldUsername, username)
	return u, nil
}

// Authenticate checks a username/password pair.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (core.User, error) {
	u, err := s.storage.GetUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return core.User{}, ErrBadCredentials
	}
	if u.Password != password {
		return core.User{}, ErrBadCredentials
	}
	return u, nil
}

// Categories lists the user's category names alphabetically.
func (s *AuthService) Categories(ctx context.Context, username string) ([]string, error) {
	return s.storage.ListCategories(ctx, username)
}

// AddCategory adds a custom category for the user.
func (s *AuthService) AddCategory(ctx context.Context, username, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	return s.storage.AddCategory(ctx, username, name)
}

// DeleteCategory removes a category by name. Existing expenses keep the name.
func (s *AuthService) DeleteCategory(ctx context.Context, username, name string) error {
	return s.storage.DeleteCategory(ctx, username, strings.TrimSpace(name))
}
