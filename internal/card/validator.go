package card

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/models"
)

// Validator holds the card eligibility predicates. Both predicates are
// fail-closed: they return false and log a debug trace, never an error.
type Validator struct {
	log *logrus.Logger
}

// NewValidator initializes a new validator
func NewValidator(log *logrus.Logger) *Validator {
	return &Validator{log: log}
}

// IsValid reports whether the card is eligible for balance operations.
// A card is invalid iff its status is BLOCKED.
func (v *Validator) IsValid(card *models.Card) bool {
	if card.Status == models.CardStatusBlocked {
		v.log.Debugf("Card with code %s is blocked", card.Code)
		return false
	}
	return true
}

// CanAfford reports whether the card balance covers the given amount.
// The comparison is an exact decimal compare with no tolerance.
func (v *Validator) CanAfford(card *models.Card, amount decimal.Decimal) bool {
	if card.Balance.Cmp(amount) < 0 {
		v.log.Debugf("Insufficient balance for card %s: balance %s, charge %s",
			card.Code, card.Balance, amount)
		return false
	}
	return true
}
