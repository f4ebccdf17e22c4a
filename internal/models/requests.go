package models

import "github.com/shopspring/decimal"

// AddCardRequest is the body of POST /cards.
type AddCardRequest struct {
	Username   string `json:"username" validate:"required"`
	CardNumber string `json:"cardNumber" validate:"required,min=8,max=19"`
	Expiration string `json:"expiration" validate:"required"`
	CVC        string `json:"cvc" validate:"required,min=3,max=4"`
}

// UpdateBalanceRequest is the body of PUT /cards/{id}/updateBalance.
type UpdateBalanceRequest struct {
	NewBalance decimal.Decimal `json:"newBalance"`
}

// BalanceOperationRequest is the body of POST /cards-aggregate/balanceOperation.
type BalanceOperationRequest struct {
	SenderCardNumber    string          `json:"senderCardNumber" validate:"required"`
	RecipientCardNumber string          `json:"recipientCardNumber" validate:"required"`
	Amount              decimal.Decimal `json:"amount"`
	Type                string          `json:"type"`
}

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	SenderCardID    *int64          `json:"senderCardId"`
	RecipientCardID *int64          `json:"recipientCardId"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type" validate:"required,oneof=TRANSFER SPEND TOPUP"`
}

// LoginRequest is the body of POST /login on the aggregate service.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}
