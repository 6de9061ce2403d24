package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/actuallystonmai/shopwiz/internal/domain"
	"github.com/actuallystonmai/shopwiz/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = 12

// Signup creates an account with a bcrypt-hashed password.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	exists, err := s.store.UserExists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost())
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	logging.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("[service] user signed up")
	return user, nil
}

// Login checks the password and returns the user. Unknown users and wrong
// passwords are both ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) bcryptCost() int {
	if s.fastHash {
		return bcrypt.MinCost
	}
	return defaultBcryptCost
}
