// Package model defines the data structures used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a marketplace participant, keyed by the Telegram user id.
//
// Deals, Positive, Negative and Volume are reputation counters. Nothing in
// the marketplace increments them yet; they belong to a settlement flow that
// does not exist.
type User struct {
	ID               string          `json:"user_id"`
	Name             string          `json:"name"`
	Surname          string          `json:"surname"`
	Username         string          `json:"username"`
	Deals            int             `json:"numofdeals"`
	Positive         int             `json:"pos"`
	Negative         int             `json:"neg"`
	Volume           decimal.Decimal `json:"volume"`
	Wallet           string          `json:"wallet"`
	RegistrationDate time.Time       `json:"registration_date"`
}

// UserStats is the reputation projection of a User.
type UserStats struct {
	Deals    int             `json:"deals"`
	Positive int             `json:"positive"`
	Negative int             `json:"negative"`
	Volume   decimal.Decimal `json:"volume"`
}

// Stats returns the reputation counters of u.
func (u *User) Stats() UserStats {
	return UserStats{
		Deals:    u.Deals,
		Positive: u.Positive,
		Negative: u.Negative,
		Volume:   u.Volume,
	}
}

// UpsertResult reports what an upsert did to the users table.
type UpsertResult int

const (
	UpsertUnchanged UpsertResult = iota
	UpsertInserted
	UpsertUsernameUpdated
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertInserted:
		return "inserted"
	case UpsertUsernameUpdated:
		return "username_updated"
	default:
		return "unchanged"
	}
}
