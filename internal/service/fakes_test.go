package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/giftmarket/internal/apperror"
	"github.com/sakif/giftmarket/internal/model"
	"github.com/sakif/giftmarket/internal/repository"
)

var errDiskFull = errors.New("database or disk is full")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users map[string]*model.User
	// set to a non-nil error to simulate a database failure
	err error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) UpsertUser(_ context.Context, userID, name, surname, username string) (model.UpsertResult, error) {
	if f.err != nil {
		return model.UpsertUnchanged, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		f.users[userID] = &model.User{
			ID: userID, Name: name, Surname: surname, Username: username,
			RegistrationDate: time.Now().UTC(),
		}
		return model.UpsertInserted, nil
	}
	if u.Username != username {
		u.Username = username
		return model.UpsertUsernameUpdated, nil
	}
	return model.UpsertUnchanged, nil
}

func (f *fakeUserRepo) GetUser(_ context.Context, userID string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdateWallet(_ context.Context, userID, wallet string) error {
	if f.err != nil {
		return f.err
	}
	if u, ok := f.users[userID]; ok {
		u.Wallet = wallet
	}
	return nil
}

// fakeAdRepo is an in-memory repository.AdRepository with the same status
// and ownership rules as the SQLite implementation.
type fakeAdRepo struct {
	ads    map[int64]*model.Advertisement
	nextID int64
	err    error
	// last NewAd passed to CreateAd
	created repository.NewAd
}

func newFakeAdRepo() *fakeAdRepo {
	return &fakeAdRepo{ads: make(map[int64]*model.Advertisement)}
}

func (f *fakeAdRepo) CreateAd(_ context.Context, in repository.NewAd) (*model.Advertisement, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = in
	f.nextID++
	ad := &model.Advertisement{
		ID: f.nextID, UserID: in.UserID, Username: in.Username,
		Collection: in.Collection, Model: in.Model, Number: in.Number,
		Price: in.Price, Currency: in.Currency, CreatedAt: in.CreatedAt,
		Status: model.StatusActive,
	}
	if ad.CreatedAt.IsZero() {
		ad.CreatedAt = time.Now().UTC()
	}
	stored := *ad
	f.ads[ad.ID] = &stored
	return ad, nil
}

func (f *fakeAdRepo) GetAd(_ context.Context, id int64) (*model.Advertisement, error) {
	ad, ok := f.ads[id]
	if !ok {
		return nil, apperror.NotFound("advertisement", strconv.FormatInt(id, 10))
	}
	copied := *ad
	return &copied, nil
}

func (f *fakeAdRepo) list(keep func(*model.Advertisement) bool) []model.Advertisement {
	out := make([]model.Advertisement, 0)
	for _, ad := range f.ads {
		if ad.Status == model.StatusActive && keep(ad) {
			out = append(out, *ad)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeAdRepo) ListActiveAds(_ context.Context, filter repository.AdFilter) ([]model.Advertisement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(ad *model.Advertisement) bool {
		if filter.Collection == "" {
			return true
		}
		if ad.Collection != filter.Collection {
			return false
		}
		return filter.Model == "" || ad.Model == filter.Model
	}), nil
}

func (f *fakeAdRepo) ListAdsByOwner(_ context.Context, userID string) ([]model.Advertisement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list(func(ad *model.Advertisement) bool { return ad.UserID == userID }), nil
}

func (f *fakeAdRepo) active(id int64) (*model.Advertisement, error) {
	ad, ok := f.ads[id]
	if !ok || ad.Status != model.StatusActive {
		return nil, apperror.NotFoundMessage("listing not found")
	}
	return ad, nil
}

func (f *fakeAdRepo) DeleteAd(_ context.Context, id int64, userID string) error {
	if f.err != nil {
		return f.err
	}
	ad, err := f.active(id)
	if err != nil {
		return err
	}
	if ad.UserID != userID {
		return apperror.Forbidden("you cannot delete this listing")
	}
	ad.Status = model.StatusDeleted
	return nil
}

func (f *fakeAdRepo) UpdateAdPrice(_ context.Context, id int64, userID string, price decimal.Decimal) error {
	if f.err != nil {
		return f.err
	}
	ad, err := f.active(id)
	if err != nil {
		return err
	}
	if ad.UserID != userID {
		return apperror.Forbidden("you cannot edit this listing")
	}
	ad.Price = price
	return nil
}

func (f *fakeAdRepo) BuyAd(_ context.Context, id int64, buyerID string) error {
	if f.err != nil {
		return f.err
	}
	ad, err := f.active(id)
	if err != nil {
		return err
	}
	if ad.UserID == buyerID {
		return apperror.ValidationFailed("user_id", "cannot buy your own listing")
	}
	ad.Status = model.StatusSold
	return nil
}
