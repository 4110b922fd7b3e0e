// Package auth reads the identity Telegram attaches to a mini-app session.
//
// INIT DATA:
// When Telegram opens the mini-app it passes a URL-encoded "init data"
// string to the page (and as the tgWebAppData query parameter):
//
//	query_id=AAH...&user={"id":123,"first_name":"Ann",...}&auth_date=1718000000&hash=9f1c...
//
// hash is an HMAC-SHA256 over the other fields, keyed with a secret derived
// from the bot token. Only a server that knows the token can check it.
//
// Without a bot token the payload is parsed but not verified, and the
// marketplace trusts whatever user it names.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

var (
	// ErrInvalidInitData means the init data failed signature or expiry checks,
	// or could not be parsed at all.
	ErrInvalidInitData = errors.New("auth: invalid init data")

	// ErrNoUser means the init data is well formed but names no user, which
	// happens for sessions opened from inline queries in group chats.
	ErrNoUser = errors.New("auth: init data carries no user")
)

// Identity is the Telegram user a request was made on behalf of.
type Identity struct {
	UserID    string
	FirstName string
	LastName  string
	Username  string
	PhotoURL  string
}

// ParseInitData extracts the user from raw init data.
//
// With a non-empty botToken the signature is validated first, and init data
// older than maxAge is rejected (maxAge 0 disables the age check).
func ParseInitData(raw, botToken string, maxAge time.Duration) (*Identity, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidInitData)
	}

	if botToken != "" {
		if err := initdata.Validate(raw, botToken, maxAge); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
		}
	}

	data, err := initdata.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInitData, err)
	}

	// User is a value in the parsed struct; a zero ID means it was absent.
	if data.User.ID == 0 {
		return nil, ErrNoUser
	}

	return &Identity{
		UserID:    strconv.FormatInt(data.User.ID, 10),
		FirstName: data.User.FirstName,
		LastName:  data.User.LastName,
		Username:  data.User.Username,
		PhotoURL:  data.User.PhotoURL,
	}, nil
}
