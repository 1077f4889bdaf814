package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/franpulido/ticketlog/internal/auth/domain"
	"github.com/franpulido/ticketlog/internal/auth/store"
	"github.com/franpulido/ticketlog/pkg/slogx"
)

// BootstrapService seeds the very first admin account so a fresh
// deployment is reachable. It only acts on an empty user table.
type BootstrapService struct {
	Store store.Store
	Users *UserService
}

// EnsureAdmin creates the initial admin account if no users exist yet.
// Returns the created user, or the zero value when the store was already
// populated.
func (s *BootstrapService) EnsureAdmin(ctx context.Context, username, email, password string) (domain.User, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("bootstrap: %w", err)
	}
	if !empty {
		return domain.User{}, nil
	}

	u, err := s.Users.CreateUser(ctx, username, email, password, []string{"admin"})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Another instance won the race; nothing to do.
			return domain.User{}, nil
		}
		return domain.User{}, fmt.Errorf("bootstrap: %w", err)
	}

	slogx.FromContext(ctx).Info("bootstrapped initial admin account",
		"user_id", u.ID,
		"username", u.Username,
	)
	return u, nil
}
