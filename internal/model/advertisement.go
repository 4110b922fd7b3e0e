package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an advertisement.
//
//	active ──buy──▶ sold
//	   └────delete──▶ deleted
//
// sold and deleted are terminal.
type Status string

const (
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusDeleted Status = "deleted"
)

// DefaultCurrency is the asset a listing is priced in when none is given.
const DefaultCurrency = "TON"

// Advertisement is a listing offering one collectible gift for sale.
type Advertisement struct {
	ID         int64           `json:"id"`
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	Collection string          `json:"collection"`
	Model      string          `json:"model"`
	Number     string          `json:"number"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	CreatedAt  time.Time       `json:"created_at"`
	Status     Status          `json:"status"`
}

// IsActive reports whether the listing can still be bought, deleted or repriced.
func (a *Advertisement) IsActive() bool {
	return a.Status == StatusActive
}

// DisplayPrice renders the price the way the mini-app shows it, e.g. "5 TON".
func (a *Advertisement) DisplayPrice() string {
	return a.Price.String() + " " + a.Currency
}
