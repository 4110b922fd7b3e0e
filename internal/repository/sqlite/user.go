package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/giftmarket/internal/apperror"
	"github.com/sakif/giftmarket/internal/model"
	"github.com/sakif/giftmarket/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// UpsertUser registers a user on first sight and afterwards only re-syncs the
// username.
//
// INSERT OR IGNORE leaves an existing row (and its registration_date)
// untouched. The follow-up UPDATE fires only when the stored username differs
// from the incoming one, including when the incoming one is empty.
func (db *DB) UpsertUser(ctx context.Context, userID, name, surname, username string) (model.UpsertResult, error) {
	res, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (user_id, name, surname, username, registration_date)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, name, surname, username, formatTime(time.Now()),
	)
	if err != nil {
		return model.UpsertUnchanged, fmt.Errorf("sqlite: inserting user %s: %w", userID, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return model.UpsertUnchanged, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if inserted > 0 {
		return model.UpsertInserted, nil
	}

	res, err = db.conn.ExecContext(ctx,
		`UPDATE users SET username = ? WHERE user_id = ? AND username != ?`,
		username, userID, username,
	)
	if err != nil {
		return model.UpsertUnchanged, fmt.Errorf("sqlite: updating username of %s: %w", userID, err)
	}

	updated, err := res.RowsAffected()
	if err != nil {
		return model.UpsertUnchanged, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if updated > 0 {
		return model.UpsertUsernameUpdated, nil
	}
	return model.UpsertUnchanged, nil
}

// GetUser returns the full profile row.
// Returns apperror.ErrNotFound if the user was never seen.
func (db *DB) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var (
		u          model.User
		registered string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, name, surname, username, numofdeals, wallet, pos, neg, volume, registration_date
		 FROM users WHERE user_id = ?`,
		userID,
	).Scan(
		&u.ID,
		&u.Name,
		&u.Surname,
		&u.Username,
		&u.Deals,
		&u.Wallet,
		&u.Positive,
		&u.Negative,
		&u.Volume,
		&registered,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", userID, err)
	}

	if u.RegistrationDate, err = parseTime(registered); err != nil {
		return nil, fmt.Errorf("sqlite: getting user %s: %w", userID, err)
	}

	return &u, nil
}

// UpdateWallet overwrites the wallet address. Unknown users are not an
// error: the UPDATE simply touches no rows.
func (db *DB) UpdateWallet(ctx context.Context, userID, wallet string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE users SET wallet = ? WHERE user_id = ?`,
		wallet, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating wallet of %s: %w", userID, err)
	}
	return nil
}
