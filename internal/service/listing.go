package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/giftmarket/internal/apperror"
	"github.com/sakif/giftmarket/internal/model"
	"github.com/sakif/giftmarket/internal/repository"
)

// CreateListingInput is a listing as submitted by a seller. Price and
// CreatedAt are raw text; CreatedAt is optional (RFC 3339).
type CreateListingInput struct {
	UserID     string
	Username   string
	Collection string
	Model      string
	Number     string
	Price      string
	Currency   string
	CreatedAt  string
}

// ListingService runs the listing lifecycle: create, browse, buy, delete and
// reprice. Ownership and status rules are enforced by the repository in the
// same statement that performs the change.
type ListingService struct {
	repo            repository.AdRepository
	defaultCurrency string
	logger          *slog.Logger
}

func NewListingService(repo repository.AdRepository, defaultCurrency string, logger *slog.Logger) *ListingService {
	if defaultCurrency == "" {
		defaultCurrency = model.DefaultCurrency
	}
	return &ListingService{
		repo:            repo,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// Create validates and stores a new active listing.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (*model.Advertisement, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Collection = strings.TrimSpace(in.Collection)
	in.Model = strings.TrimSpace(in.Model)
	in.Number = strings.TrimSpace(in.Number)
	in.Currency = strings.TrimSpace(in.Currency)

	for _, f := range []struct{ name, value string }{
		{"user_id", in.UserID},
		{"collection", in.Collection},
		{"model", in.Model},
		{"number", in.Number},
	} {
		if f.value == "" {
			return nil, apperror.ValidationFailed(f.name, f.name+" is required")
		}
	}

	price, err := parsePrice("price", in.Price)
	if err != nil {
		return nil, err
	}

	var createdAt time.Time
	if raw := strings.TrimSpace(in.CreatedAt); raw != "" {
		createdAt, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, apperror.ValidationFailed("created_at", "created_at must be an RFC 3339 timestamp")
		}
	}

	currency := in.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	ad, err := s.repo.CreateAd(ctx, repository.NewAd{
		UserID:     in.UserID,
		Username:   in.Username,
		Collection: in.Collection,
		Model:      in.Model,
		Number:     in.Number,
		Price:      price,
		Currency:   currency,
		CreatedAt:  createdAt,
	})
	if err != nil {
		s.logger.Error("failed to create listing",
			slog.String("user_id", in.UserID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating listing: %w", err)
	}

	s.logger.Info("listing created",
		slog.Int64("ad_id", ad.ID),
		slog.String("user_id", ad.UserID),
		slog.String("collection", ad.Collection),
		slog.String("model", ad.Model),
		slog.String("price", ad.DisplayPrice()),
	)

	return ad, nil
}

// ListActive returns active listings, newest first. modelName only applies
// together with collection.
func (s *ListingService) ListActive(ctx context.Context, collection, modelName string) ([]model.Advertisement, error) {
	ads, err := s.repo.ListActiveAds(ctx, repository.AdFilter{
		Collection: strings.TrimSpace(collection),
		Model:      strings.TrimSpace(modelName),
	})
	if err != nil {
		s.logger.Error("failed to list listings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing active ads: %w", err)
	}
	return ads, nil
}

// ListByOwner returns the caller's own active listings.
func (s *ListingService) ListByOwner(ctx context.Context, userID string) ([]model.Advertisement, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("user_id", "user_id is required")
	}

	ads, err := s.repo.ListAdsByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list own listings",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing ads of %s: %w", userID, err)
	}
	return ads, nil
}

// Delete withdraws an active listing. Only its seller may do so.
func (s *ListingService) Delete(ctx context.Context, adID, userID string) error {
	id, userID, err := parseListingRef(adID, userID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteAd(ctx, id, userID); err != nil {
		return s.mutationFailed("delete", id, userID, err)
	}

	s.logger.Info("listing deleted", slog.Int64("ad_id", id), slog.String("user_id", userID))
	return nil
}

// UpdatePrice reprices an active listing. Only its seller may do so.
func (s *ListingService) UpdatePrice(ctx context.Context, adID, userID, newPrice string) error {
	id, userID, err := parseListingRef(adID, userID)
	if err != nil {
		return err
	}
	price, err := parsePrice("new_price", newPrice)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateAdPrice(ctx, id, userID, price); err != nil {
		return s.mutationFailed("update_price", id, userID, err)
	}

	s.logger.Info("listing repriced",
		slog.Int64("ad_id", id),
		slog.String("user_id", userID),
		slog.String("price", price.String()),
	)
	return nil
}

// Buy marks an active listing as sold to buyerID. Sellers cannot buy their
// own listings. No funds move; settlement happens outside the marketplace.
func (s *ListingService) Buy(ctx context.Context, adID, buyerID string) error {
	id, buyerID, err := parseListingRef(adID, buyerID)
	if err != nil {
		return err
	}

	if err := s.repo.BuyAd(ctx, id, buyerID); err != nil {
		return s.mutationFailed("buy", id, buyerID, err)
	}

	s.logger.Info("listing sold", slog.Int64("ad_id", id), slog.String("buyer_id", buyerID))
	return nil
}

// mutationFailed logs a failed lifecycle call. Domain outcomes (not found,
// forbidden, own listing) are expected and logged at info; anything else is
// a store failure.
func (s *ListingService) mutationFailed(op string, id int64, userID string, err error) error {
	attrs := []any{
		slog.String("op", op),
		slog.Int64("ad_id", id),
		slog.String("user_id", userID),
		slog.String("error", err.Error()),
	}
	if isDomainError(err) {
		s.logger.Info("listing change rejected", attrs...)
		return err
	}
	s.logger.Error("listing change failed", attrs...)
	return fmt.Errorf("%s listing %d: %w", op, id, err)
}

func parseListingRef(adID, userID string) (int64, string, error) {
	adID = strings.TrimSpace(adID)
	userID = strings.TrimSpace(userID)
	if adID == "" {
		return 0, "", apperror.ValidationFailed("ad_id", "ad_id is required")
	}
	if userID == "" {
		return 0, "", apperror.ValidationFailed("user_id", "user_id is required")
	}

	id, err := strconv.ParseInt(adID, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", apperror.ValidationFailed("ad_id", "ad_id must be a positive integer")
	}
	return id, userID, nil
}

// Bounds on parsed prices. decimal keeps the exponent as written, so
// "1e1000000" would otherwise expand to a million-digit string.
const (
	maxPriceDigits   = 30
	maxPriceExponent = 18
)

// parsePrice accepts any finite decimal number within the bounds above,
// e.g. "5", "0.25", "1e3".
func parsePrice(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, apperror.ValidationFailed(field, field+" is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, apperror.ValidationFailed(field, "price must be a number")
	}
	if exp := price.Exponent(); price.NumDigits() > maxPriceDigits || exp > maxPriceExponent || exp < -maxPriceExponent {
		return decimal.Decimal{}, apperror.ValidationFailed(field, "price must be a number")
	}
	return price, nil
}

func isDomainError(err error) bool {
	return errors.Is(err, apperror.ErrNotFound) ||
		errors.Is(err, apperror.ErrForbidden) ||
		errors.Is(err, apperror.ErrValidation)
}
