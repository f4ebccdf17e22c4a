package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types recorded in the ledger.
const (
	TransactionTypeTransfer = "TRANSFER"
	TransactionTypeSpend    = "SPEND"
	TransactionTypeTopup    = "TOPUP"
)

// Transaction is an immutable ledger entry recording a balance movement.
// Single-card movements (spend, topup) leave the unused leg nil.
type Transaction struct {
	ID              int64           `json:"id"`
	Code            string          `json:"code"`
	SenderCardID    *int64          `json:"senderCardId"`
	RecipientCardID *int64          `json:"recipientCardId"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedAt       time.Time       `json:"createdAt"`
}
