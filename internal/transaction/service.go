package transaction

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/apperr"
	"github.com/Dan9191/virtualcard/internal/models"
)

// Store is the ledger persistence contract consumed by the service.
type Store interface {
	CreateTransaction(tx *models.Transaction) error
	GetTransactionsByCard(cardID int64, offset, limit int, lower, upper time.Time) ([]models.Transaction, error)
	CountTransactionsByCard(cardID int64, lower, upper time.Time) (int, error)
}

// Transactions older than this are out of scope for unbounded queries.
var minLowerBound = time.Date(1991, 1, 1, 0, 0, 0, 0, time.UTC)

// Service handles ledger business logic
type Service struct {
	repo             Store
	requestValidator *validator.Validate
	log              *logrus.Logger
}

// NewService initializes a new transaction service
func NewService(repo Store, log *logrus.Logger) *Service {
	return &Service{
		repo:             repo,
		requestValidator: validator.New(),
		log:              log,
	}
}

// CreateTransaction appends a ledger entry with a generated unique code and
// creation timestamp. Entries are immutable once written.
func (s *Service) CreateTransaction(req models.CreateTransactionRequest) (*models.Transaction, error) {
	if err := s.requestValidator.Struct(req); err != nil {
		return nil, apperr.InvalidInputf("invalid transaction request: %v", err)
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.InvalidInputf("amount must be positive")
	}

	tx := &models.Transaction{
		Code:            uuid.NewString(),
		SenderCardID:    req.SenderCardID,
		RecipientCardID: req.RecipientCardID,
		Type:            req.Type,
		Amount:          req.Amount,
	}
	if err := s.repo.CreateTransaction(tx); err != nil {
		return nil, err
	}

	s.log.Infof("Transaction %s recorded: type %s, amount %s", tx.Code, tx.Type, tx.Amount)
	return tx, nil
}

// GetTransactionsByCard returns one page of the card's ledger entries plus
// pagination metadata. Page parameters are validated before any query runs.
func (s *Service) GetTransactionsByCard(cardID int64, page, size int, lower, upper *time.Time) (*models.PagedTransactionResponse, error) {
	if page < 0 {
		return nil, apperr.InvalidInputf("page must not be negative")
	}
	if size < 1 {
		return nil, apperr.InvalidInputf("page size must be at least 1")
	}

	lowerBound := minLowerBound
	if lower != nil {
		lowerBound = *lower
	}
	upperBound := time.Now()
	if upper != nil {
		upperBound = *upper
	}

	total, err := s.repo.CountTransactionsByCard(cardID, lowerBound, upperBound)
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.GetTransactionsByCard(cardID, page*size, size, lowerBound, upperBound)
	if err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []models.Transaction{}
	}

	totalPages := (total + size - 1) / size
	return &models.PagedTransactionResponse{
		Metadata: models.PaginationMetadata{
			CurrentPage:   page,
			PageSize:      size,
			TotalElements: total,
			TotalPages:    totalPages,
			HasNext:       (page+1)*size < total,
			HasPrevious:   page > 0,
		},
		Transactions: txs,
	}, nil
}

// GetCurrentMonthTransactions returns every ledger entry of the card between
// the first and last instant of the current month in server-local time.
func (s *Service) GetCurrentMonthTransactions(cardID int64) ([]models.Transaction, error) {
	lower, upper := currentMonthBounds(time.Now())
	total, err := s.repo.CountTransactionsByCard(cardID, lower, upper)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return []models.Transaction{}, nil
	}
	return s.repo.GetTransactionsByCard(cardID, 0, total, lower, upper)
}

func currentMonthBounds(now time.Time) (time.Time, time.Time) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return first, last
}
