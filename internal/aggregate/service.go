package aggregate

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/aggregate/ratelimit"
	"github.com/Dan9191/virtualcard/internal/apperr"
	"github.com/Dan9191/virtualcard/internal/models"
)

// CardClient is the card service surface consumed by the orchestrator.
type CardClient interface {
	GetValidCard(ctx context.Context, code string) (*models.Card, error)
	GetCoveredCard(ctx context.Context, code string, amount decimal.Decimal) (*models.Card, error)
	UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error
}

// TransactionClient is the transaction service surface consumed by the orchestrator.
type TransactionClient interface {
	CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error)
}

// Alerter sends notifications about completed transfers.
type Alerter interface {
	Enabled() bool
	SendTransferAlert(senderCode, recipientCode string, amount decimal.Decimal) error
}

// Service orchestrates multi-card balance operations across the card and
// transaction services. There is no cross-service transaction: the steps
// are ordered network calls and a failure aborts the remaining ones.
type Service struct {
	cards            CardClient
	transactions     TransactionClient
	limiter          *ratelimit.Limiter
	alerts           Alerter
	requestValidator *validator.Validate
	log              *logrus.Logger
	maxSpends        int
}

// NewService initializes a new orchestrator. alerts may be nil.
func NewService(cards CardClient, transactions TransactionClient, limiter *ratelimit.Limiter,
	alerts Alerter, log *logrus.Logger, maxSpends int) *Service {
	return &Service{
		cards:            cards,
		transactions:     transactions,
		limiter:          limiter,
		alerts:           alerts,
		requestValidator: validator.New(),
		log:              log,
		maxSpends:        maxSpends,
	}
}

type cardResult struct {
	card *models.Card
	err  error
}

// BalanceOperation moves amount from the sender card to the recipient card
// and records a TRANSFER ledger entry. Steps, in order: admission control,
// concurrent fetch of both cards, balance computation, then three strictly
// sequential writes (sender balance, recipient balance, ledger entry). On
// any failure after admission the spend counter is rolled back.
func (s *Service) BalanceOperation(ctx context.Context, req models.BalanceOperationRequest) error {
	if err := s.requestValidator.Struct(req); err != nil {
		return apperr.InvalidInputf("invalid balance operation request: %v", err)
	}
	if !req.Amount.IsPositive() {
		return apperr.InvalidInputf("amount must be positive")
	}

	if !s.limiter.Allow(req.SenderCardNumber) {
		return apperr.RateLimitedf("Max %d spends per minute exceeded for card %s",
			s.maxSpends, req.SenderCardNumber)
	}

	err := s.transfer(ctx, req)
	if err != nil {
		// The failed attempt is not held against the card.
		s.limiter.Rollback(req.SenderCardNumber)
		return err
	}
	return nil
}

func (s *Service) transfer(ctx context.Context, req models.BalanceOperationRequest) error {
	sender, recipient, err := s.fetchCards(ctx, req.SenderCardNumber, req.RecipientCardNumber, req.Amount)
	if err != nil {
		return err
	}

	newSenderBalance := sender.Balance.Sub(req.Amount)
	newRecipientBalance := recipient.Balance.Add(req.Amount)

	// Ordered writes, each must succeed before the next is issued.
	// TODO: compensate the sender/recipient balance writes when a later
	// step fails; today a mid-sequence failure leaves the earlier writes
	// in place and only the spend counter is rolled back.
	if err := s.cards.UpdateBalance(ctx, sender.ID, newSenderBalance); err != nil {
		return err
	}
	if err := s.cards.UpdateBalance(ctx, recipient.ID, newRecipientBalance); err != nil {
		return err
	}
	if _, err := s.transactions.CreateTransaction(ctx, models.CreateTransactionRequest{
		SenderCardID:    &sender.ID,
		RecipientCardID: &recipient.ID,
		Amount:          req.Amount,
		Type:            models.TransactionTypeTransfer,
	}); err != nil {
		return err
	}

	s.log.Infof("Transfer of %s from card %s to card %s completed",
		req.Amount, req.SenderCardNumber, req.RecipientCardNumber)
	s.notify(req.SenderCardNumber, req.RecipientCardNumber, req.Amount)
	return nil
}

// fetchCards retrieves both cards concurrently and joins the results. The
// sender must exist, not be blocked and cover the amount; those three
// causes collapse into one message at this boundary. The recipient only
// needs to exist and not be blocked.
func (s *Service) fetchCards(ctx context.Context, senderCode, recipientCode string, amount decimal.Decimal) (*models.Card, *models.Card, error) {
	senderCh := make(chan cardResult, 1)
	recipientCh := make(chan cardResult, 1)

	go func() {
		card, err := s.cards.GetCoveredCard(ctx, senderCode, amount)
		if apperr.IsKind(err, apperr.NotFound) {
			err = apperr.NotFoundf("Sender card number: %s not found, blocked or insufficient balance", senderCode)
		}
		senderCh <- cardResult{card: card, err: err}
	}()
	go func() {
		card, err := s.cards.GetValidCard(ctx, recipientCode)
		if apperr.IsKind(err, apperr.NotFound) {
			err = apperr.NotFoundf("Recipient card number: %s not found", recipientCode)
		}
		recipientCh <- cardResult{card: card, err: err}
	}()

	senderRes, recipientRes := <-senderCh, <-recipientCh
	if senderRes.err != nil {
		return nil, nil, senderRes.err
	}
	if recipientRes.err != nil {
		return nil, nil, recipientRes.err
	}
	return senderRes.card, recipientRes.card, nil
}

// Spend debits amount from the card and records a SPEND ledger entry.
// Returns the card's new balance. Spends are rate limited.
func (s *Service) Spend(ctx context.Context, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperr.InvalidInputf("amount must be positive")
	}
	if !s.limiter.Allow(code) {
		return decimal.Zero, apperr.RateLimitedf("Max %d spends per minute exceeded for card %s", s.maxSpends, code)
	}

	newBalance, err := s.singleCardOperation(ctx, code, amount, models.TransactionTypeSpend)
	if err != nil {
		s.limiter.Rollback(code)
		return decimal.Zero, err
	}
	return newBalance, nil
}

// Topup credits amount to the card and records a TOPUP ledger entry.
// Returns the card's new balance. Topups are not rate limited.
func (s *Service) Topup(ctx context.Context, code string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, apperr.InvalidInputf("amount must be positive")
	}
	return s.singleCardOperation(ctx, code, amount, models.TransactionTypeTopup)
}

func (s *Service) singleCardOperation(ctx context.Context, code string, amount decimal.Decimal, txType string) (decimal.Decimal, error) {
	var card *models.Card
	var err error
	if txType == models.TransactionTypeSpend {
		card, err = s.cards.GetCoveredCard(ctx, code, amount)
		if apperr.IsKind(err, apperr.NotFound) {
			err = apperr.NotFoundf("Card number: %s not found, blocked or insufficient balance", code)
		}
	} else {
		card, err = s.cards.GetValidCard(ctx, code)
		if apperr.IsKind(err, apperr.NotFound) {
			err = apperr.NotFoundf("Card number: %s not found", code)
		}
	}
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := card.Balance.Add(amount)
	txReq := models.CreateTransactionRequest{RecipientCardID: &card.ID, Amount: amount, Type: txType}
	if txType == models.TransactionTypeSpend {
		newBalance = card.Balance.Sub(amount)
		txReq = models.CreateTransactionRequest{SenderCardID: &card.ID, Amount: amount, Type: txType}
	}

	if err := s.cards.UpdateBalance(ctx, card.ID, newBalance); err != nil {
		return decimal.Zero, err
	}
	if _, err := s.transactions.CreateTransaction(ctx, txReq); err != nil {
		return decimal.Zero, err
	}

	s.log.Infof("%s of %s on card %s completed, new balance %s", txType, amount, code, newBalance)
	return newBalance, nil
}

func (s *Service) notify(senderCode, recipientCode string, amount decimal.Decimal) {
	if s.alerts == nil || !s.alerts.Enabled() {
		return
	}
	go func() {
		if err := s.alerts.SendTransferAlert(senderCode, recipientCode, amount); err != nil {
			s.log.Warnf("Transfer alert failed: %v", err)
		}
	}()
}
