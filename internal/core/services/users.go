package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pratham-srivastava-07/Nexus/internal/core/domain"
	"github.com/pratham-srivastava-07/Nexus/pkg/logging"
)

// UserService owns the phone → durable user resolution used at registration
// and message time. Users are created on first contact and never deleted.
type UserService struct {
	log  *slog.Logger
	repo domain.UserRepository
}

func NewUserService(log *slog.Logger, repo domain.UserRepository) *UserService {
	return &UserService{
		log:  log,
		repo: repo,
	}
}

// ResolveOrCreate returns the user for phone, creating one on first contact.
// A non-placeholder username on a later registration replaces the stored
// display name; a blank or placeholder one never downgrades it.
func (s *UserService) ResolveOrCreate(ctx context.Context, phone, username string) (*domain.User, error) {
	if phone == "" {
		return nil, fmt.Errorf("%w: phone number is required", domain.ErrInvalidFrame)
	}
	user, err := s.repo.FindByPhone(ctx, phone)
	if errors.Is(err, domain.ErrUserNotFound) {
		created, err := s.repo.Create(ctx, domain.NewUser(phone, username))
		if err != nil {
			s.log.ErrorContext(ctx, "users - resolve or create - create failed", logging.Phone(phone), logging.Err(err))
			return nil, err
		}
		s.log.InfoContext(ctx, "users - resolve or create - user created", logging.Phone(phone), logging.User(created.ID))
		return created, nil
	}
	if err != nil {
		s.log.ErrorContext(ctx, "users - resolve or create - lookup failed", logging.Phone(phone), logging.Err(err))
		return nil, err
	}
	if username != "" && username != domain.PlaceholderUsername && username != user.Username {
		if err := s.repo.UpdateUsername(ctx, user.ID, username); err != nil {
			s.log.ErrorContext(ctx, "users - resolve or create - username update failed", logging.User(user.ID), logging.Err(err))
			return nil, err
		}
		user.Username = username
	}
	return user, nil
}

// Find returns the durable user by id.
func (s *UserService) Find(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}
