package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Card statuses. A blocked card is never eligible for balance operations.
const (
	CardStatusActive  = "ACTIVE"
	CardStatusBlocked = "BLOCKED"
)

// Card represents a balance-holding card owned by the card service.
// Version increases by one on every successful balance write; a write
// carrying a stale version is rejected with a conflict.
type Card struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"userId"`
	Code           string          `json:"code"`
	Balance        decimal.Decimal `json:"balance"`
	Status         string          `json:"status"`
	Version        int             `json:"version"`
	CVC            string          `json:"-"` // Not serialized
	ExpirationDate string          `json:"expirationDate"` // Format: MM/YY
	CreatedAt      time.Time       `json:"createdAt"`
}
