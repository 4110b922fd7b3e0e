// Package repository declares the storage contracts of the marketplace.
//
// Both the HTTP facade and the chat bot reach the data only through these
// interfaces, so the database is the one place where they meet.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/giftmarket/internal/model"
)

// AdFilter narrows ListActiveAds. Model is ignored unless Collection is set.
type AdFilter struct {
	Collection string
	Model      string
}

// NewAd carries the fields of a listing being created. A zero CreatedAt means now.
type NewAd struct {
	UserID     string
	Username   string
	Collection string
	Model      string
	Number     string
	Price      decimal.Decimal
	Currency   string
	CreatedAt  time.Time
}

type UserRepository interface {
	UpsertUser(ctx context.Context, userID, name, surname, username string) (model.UpsertResult, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateWallet(ctx context.Context, userID, wallet string) error
}

type AdRepository interface {
	CreateAd(ctx context.Context, ad NewAd) (*model.Advertisement, error)
	GetAd(ctx context.Context, id int64) (*model.Advertisement, error)
	ListActiveAds(ctx context.Context, filter AdFilter) ([]model.Advertisement, error)
	ListAdsByOwner(ctx context.Context, userID string) ([]model.Advertisement, error)
	DeleteAd(ctx context.Context, id int64, userID string) error
	UpdateAdPrice(ctx context.Context, id int64, userID string, price decimal.Decimal) error
	BuyAd(ctx context.Context, id int64, buyerID string) error
}
