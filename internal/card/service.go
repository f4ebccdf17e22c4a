package card

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/apperr"
	"github.com/Dan9191/virtualcard/internal/models"
)

// Store is the card persistence contract consumed by the service.
type Store interface {
	CreateCard(card *models.Card) error
	GetCardByCode(code string) (*models.Card, error)
	GetCardByID(id int64) (*models.Card, error)
	GetCardsByUserID(userID int64) ([]models.Card, error)
	UpdateBalance(id int64, newBalance decimal.Decimal, version int) error
}

// UserGetter resolves card owners against the user service.
type UserGetter interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// Service handles card business logic
type Service struct {
	repo             Store
	users            UserGetter
	cardValidator    *Validator
	requestValidator *validator.Validate
	log              *logrus.Logger
	activateOnCreate bool
}

// NewService initializes a new card service
func NewService(repo Store, users UserGetter, cardValidator *Validator, log *logrus.Logger, activateOnCreate bool) *Service {
	return &Service{
		repo:             repo,
		users:            users,
		cardValidator:    cardValidator,
		requestValidator: validator.New(),
		log:              log,
		activateOnCreate: activateOnCreate,
	}
}

// CreateCard issues a new card for the given user. The balance starts at
// zero; the status follows the activation policy (BLOCKED by default).
func (s *Service) CreateCard(ctx context.Context, req models.AddCardRequest) error {
	if err := s.requestValidator.Struct(req); err != nil {
		return apperr.InvalidInputf("invalid card request: %v", err)
	}

	user, err := s.users.GetUser(ctx, req.Username)
	if err != nil {
		return err
	}

	status := models.CardStatusBlocked
	if s.activateOnCreate {
		status = models.CardStatusActive
	}

	card := &models.Card{
		UserID:         user.ID,
		Code:           req.CardNumber,
		Status:         status,
		CVC:            req.CVC,
		ExpirationDate: req.Expiration,
	}
	if err := s.repo.CreateCard(card); err != nil {
		return err
	}

	s.log.Infof("Card created for user %s", req.Username)
	return nil
}

// GetCard retrieves a card by card number with no eligibility filtering.
func (s *Service) GetCard(code string) (*models.Card, error) {
	return s.repo.GetCardByCode(code)
}

// GetValidCard retrieves a card by card number, filtered by the blocked-status
// check. A blocked card surfaces the same way as a missing one.
func (s *Service) GetValidCard(code string) (*models.Card, error) {
	card, err := s.repo.GetCardByCode(code)
	if err != nil {
		return nil, err
	}
	if !s.cardValidator.IsValid(card) {
		return nil, apperr.NotFoundf("card not found")
	}
	return card, nil
}

// GetValidCoveredCard retrieves a card by card number, filtered by both the
// blocked-status check and the sufficient-funds check for the given amount.
func (s *Service) GetValidCoveredCard(code string, amount decimal.Decimal) (*models.Card, error) {
	card, err := s.GetValidCard(code)
	if err != nil {
		return nil, err
	}
	if !s.cardValidator.CanAfford(card, amount) {
		return nil, apperr.NotFoundf("card not found")
	}
	return card, nil
}

// GetAllCardsByUsername lists every card of the given user, any status.
func (s *Service) GetAllCardsByUsername(ctx context.Context, username string) ([]models.Card, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.GetCardsByUserID(user.ID)
}

// UpdateBalance sets the card balance to newBalance, protected by the row's
// optimistic version check. Returns NotFound for an unknown id and Conflict
// when a concurrent writer advanced the version since our read.
func (s *Service) UpdateBalance(id int64, newBalance decimal.Decimal) error {
	card, err := s.repo.GetCardByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateBalance(id, newBalance, card.Version); err != nil {
		return err
	}
	s.log.Debugf("Balance of card %d updated to %s", id, newBalance)
	return nil
}
