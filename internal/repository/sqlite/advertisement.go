package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sakif/giftmarket/internal/apperror"
	"github.com/sakif/giftmarket/internal/model"
	"github.com/sakif/giftmarket/internal/repository"
)

var _ repository.AdRepository = (*DB)(nil)

const adColumns = `id, user_id, username, collection, model, number, price, currency, created_at, status`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAd(s rowScanner) (model.Advertisement, error) {
	var (
		ad      model.Advertisement
		created string
	)
	if err := s.Scan(
		&ad.ID, &ad.UserID, &ad.Username, &ad.Collection, &ad.Model, &ad.Number,
		&ad.Price, &ad.Currency, &created, &ad.Status,
	); err != nil {
		return ad, err
	}

	t, err := parseTime(created)
	if err != nil {
		return ad, err
	}
	ad.CreatedAt = t
	return ad, nil
}

// CreateAd inserts a new active listing and returns it with its assigned id.
func (db *DB) CreateAd(ctx context.Context, in repository.NewAd) (*model.Advertisement, error) {
	ad := &model.Advertisement{
		UserID:     in.UserID,
		Username:   in.Username,
		Collection: in.Collection,
		Model:      in.Model,
		Number:     in.Number,
		Price:      in.Price,
		Currency:   in.Currency,
		CreatedAt:  in.CreatedAt.UTC(),
		Status:     model.StatusActive,
	}
	if ad.Currency == "" {
		ad.Currency = model.DefaultCurrency
	}
	if in.CreatedAt.IsZero() {
		ad.CreatedAt = time.Now().UTC()
	}

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO advertisements
		   (user_id, username, collection, model, number, price, currency, created_at, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ad.UserID,
		ad.Username,
		ad.Collection,
		ad.Model,
		ad.Number,
		ad.Price.String(),
		ad.Currency,
		formatTime(ad.CreatedAt),
		string(ad.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating advertisement: %w", err)
	}

	if ad.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("sqlite: reading advertisement id: %w", err)
	}

	return ad, nil
}

// GetAd returns a listing in any status.
func (db *DB) GetAd(ctx context.Context, id int64) (*model.Advertisement, error) {
	ad, err := scanAd(db.conn.QueryRowContext(ctx,
		`SELECT `+adColumns+` FROM advertisements WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("advertisement", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting advertisement %d: %w", id, err)
	}
	return &ad, nil
}

// ListActiveAds returns active listings, newest first.
//
// The model filter only narrows a collection filter: choosing a model
// without a collection means nothing in the mini-app, so it is ignored.
func (db *DB) ListActiveAds(ctx context.Context, filter repository.AdFilter) ([]model.Advertisement, error) {
	var (
		where = []string{"status = ?"}
		args  = []any{string(model.StatusActive)}
	)
	if filter.Collection != "" {
		where = append(where, "collection = ?")
		args = append(args, filter.Collection)

		if filter.Model != "" {
			where = append(where, "model = ?")
			args = append(args, filter.Model)
		}
	}

	query := `SELECT ` + adColumns + ` FROM advertisements
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC`

	return db.queryAds(ctx, query, args...)
}

// ListAdsByOwner returns the active listings of one seller, newest first.
func (db *DB) ListAdsByOwner(ctx context.Context, userID string) ([]model.Advertisement, error) {
	return db.queryAds(ctx,
		`SELECT `+adColumns+` FROM advertisements
		 WHERE user_id = ? AND status = ?
		 ORDER BY created_at DESC, id DESC`,
		userID, string(model.StatusActive),
	)
}

func (db *DB) queryAds(ctx context.Context, query string, args ...any) ([]model.Advertisement, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing advertisements: %w", err)
	}
	defer rows.Close()

	ads := make([]model.Advertisement, 0)
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning advertisement row: %w", err)
		}
		ads = append(ads, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating advertisements: %w", err)
	}

	return ads, nil
}

// DeleteAd moves an active listing owned by userID to deleted.
func (db *DB) DeleteAd(ctx context.Context, id int64, userID string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE advertisements SET status = ?
		 WHERE id = ? AND status = ? AND user_id = ?`,
		string(model.StatusDeleted), id, string(model.StatusActive), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting advertisement %d: %w", id, err)
	}

	return db.explainOwnerMiss(ctx, res, id, userID,
		"listing not found or already deleted",
		"you cannot delete this listing",
	)
}

// UpdateAdPrice reprices an active listing owned by userID.
func (db *DB) UpdateAdPrice(ctx context.Context, id int64, userID string, price decimal.Decimal) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE advertisements SET price = ?
		 WHERE id = ? AND status = ? AND user_id = ?`,
		price.String(), id, string(model.StatusActive), userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating price of advertisement %d: %w", id, err)
	}

	return db.explainOwnerMiss(ctx, res, id, userID,
		"listing not found or already deleted",
		"you cannot edit this listing",
	)
}

// BuyAd moves an active listing to sold, unless buyerID is its seller.
//
// The status check and the write are one statement, so of two concurrent
// buyers exactly one sees a changed row; the other gets ErrNotFound.
func (db *DB) BuyAd(ctx context.Context, id int64, buyerID string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE advertisements SET status = ?
		 WHERE id = ? AND status = ? AND user_id != ?`,
		string(model.StatusSold), id, string(model.StatusActive), buyerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: buying advertisement %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	seller, found, err := db.activeOwner(ctx, id)
	if err != nil {
		return err
	}
	if found && seller == buyerID {
		return apperror.ValidationFailed("user_id", "cannot buy your own listing")
	}
	return apperror.NotFoundMessage("listing not found or already sold")
}

// explainOwnerMiss turns a zero-row owner-guarded UPDATE into NotFound or
// Forbidden. The extra read only picks the error; it never decides whether
// the write happens.
func (db *DB) explainOwnerMiss(ctx context.Context, res sql.Result, id int64, userID, notFound, forbidden string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	owner, found, err := db.activeOwner(ctx, id)
	if err != nil {
		return err
	}
	if found && owner != userID {
		return apperror.Forbidden(forbidden)
	}
	return apperror.NotFoundMessage(notFound)
}

// activeOwner returns the seller of listing id if it is still active.
func (db *DB) activeOwner(ctx context.Context, id int64) (string, bool, error) {
	var owner string
	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id FROM advertisements WHERE id = ? AND status = ?`,
		id, string(model.StatusActive),
	).Scan(&owner)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: looking up owner of advertisement %d: %w", id, err)
	}
	return owner, true, nil
}
