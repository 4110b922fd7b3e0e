// Package service contains the business rules of the marketplace.
//
// Services take plain strings (as they arrive from JSON bodies or bot
// messages), validate them, and delegate to the repository interfaces. They
// know nothing about HTTP or Telegram; both the handler package and the bot
// package call into them.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/giftmarket/internal/apperror"
	"github.com/sakif/giftmarket/internal/model"
	"github.com/sakif/giftmarket/internal/repository"
)

// UserService handles registration and profile reads.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
	}
}

// Register records a user the first time they are seen and re-syncs their
// username on later visits. name, surname and username may be empty.
func (s *UserService) Register(ctx context.Context, userID, name, surname, username string) (model.UpsertResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return model.UpsertUnchanged, apperror.ValidationFailed("user_id", "user_id is required")
	}

	res, err := s.repo.UpsertUser(ctx, userID, name, surname, username)
	if err != nil {
		s.logger.Error("failed to upsert user",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return model.UpsertUnchanged, fmt.Errorf("registering user: %w", err)
	}

	if res != model.UpsertUnchanged {
		s.logger.Info("user synced",
			slog.String("user_id", userID),
			slog.String("username", username),
			slog.String("result", res.String()),
		)
	}

	return res, nil
}

// GetUser returns the full profile. Returns apperror.ErrNotFound for unknown users.
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("user_id", "user_id is required")
	}
	return s.repo.GetUser(ctx, userID)
}

// UpdateWallet stores the wallet address the mini-app connected. The address
// is opaque here; it is neither parsed nor checked against the chain.
func (s *UserService) UpdateWallet(ctx context.Context, userID, wallet string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperror.ValidationFailed("user_id", "user_id is required")
	}
	if wallet == "" {
		return apperror.ValidationFailed("wallet", "wallet is required")
	}

	if err := s.repo.UpdateWallet(ctx, userID, wallet); err != nil {
		s.logger.Error("failed to update wallet",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("updating wallet: %w", err)
	}

	s.logger.Info("wallet updated", slog.String("user_id", userID))
	return nil
}

// GetRegistrationDate returns when the user was first registered.
func (s *UserService) GetRegistrationDate(ctx context.Context, userID string) (time.Time, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return u.RegistrationDate, nil
}

// GetStats returns the reputation counters of a user.
func (s *UserService) GetStats(ctx context.Context, userID string) (model.UserStats, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return model.UserStats{}, err
	}
	return u.Stats(), nil
}

// GetUsername returns the stored username, which may be empty.
func (s *UserService) GetUsername(ctx context.Context, userID string) (string, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}
