package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/franpulido/ticketlog/internal/auth/domain"
	"github.com/franpulido/ticketlog/internal/auth/store"
	"github.com/franpulido/ticketlog/pkg/cryptox"
	"github.com/franpulido/ticketlog/pkg/idx"
)

// UserService covers account lookup and creation. Password hashing lives
// here so handlers and bootstrap code never touch raw hashes.
type UserService struct {
	Store store.Store
}

// GetUserByID returns the account for an authenticated subject.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// CreateUser hashes the password and persists a new enabled account.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string, roles []string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, fmt.Errorf("create user: username required")
	}
	if password == "" {
		return domain.User{}, fmt.Errorf("create user: password required")
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Roles:        roles,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// ChangePassword rehashes and stores a new password for an existing user.
func (s *UserService) ChangePassword(ctx context.Context, id, password string) error {
	if password == "" {
		return fmt.Errorf("change password: password required")
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, id, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}
