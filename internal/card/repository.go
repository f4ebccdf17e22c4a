package card

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/virtualcard/internal/apperr"
	"github.com/Dan9191/virtualcard/internal/models"
)

// Repository provides database operations for cards
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateCard inserts a new card with a zero balance and version 0
func (r *Repository) CreateCard(card *models.Card) error {
	query := `
		INSERT INTO cards (user_id, code, balance, status, version, cvc, expiration_date, created_at)
		VALUES ($1, $2, 0, $3, 0, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, balance, created_at`
	err := r.db.QueryRow(query, card.UserID, card.Code, card.Status, card.CVC, card.ExpirationDate).
		Scan(&card.ID, &card.Balance, &card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// GetCardByCode retrieves a card by its public card number
func (r *Repository) GetCardByCode(code string) (*models.Card, error) {
	return r.getCard("code = $1", code)
}

// GetCardByID retrieves a card by its surrogate key
func (r *Repository) GetCardByID(id int64) (*models.Card, error) {
	return r.getCard("id = $1", id)
}

func (r *Repository) getCard(where string, arg any) (*models.Card, error) {
	card := &models.Card{}
	query := `
		SELECT id, user_id, code, balance, status, version, cvc, expiration_date, created_at
		FROM cards
		WHERE ` + where
	err := r.db.QueryRow(query, arg).
		Scan(&card.ID, &card.UserID, &card.Code, &card.Balance, &card.Status,
			&card.Version, &card.CVC, &card.ExpirationDate, &card.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("card not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card: %w", err)
	}
	return card, nil
}

// GetCardsByUserID retrieves every card owned by the given user
func (r *Repository) GetCardsByUserID(userID int64) ([]models.Card, error) {
	query := `
		SELECT id, user_id, code, balance, status, version, cvc, expiration_date, created_at
		FROM cards
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var card models.Card
		if err := rows.Scan(&card.ID, &card.UserID, &card.Code, &card.Balance, &card.Status,
			&card.Version, &card.CVC, &card.ExpirationDate, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// UpdateBalance writes the new balance with a compare-and-swap on the row
// version. Zero affected rows means another writer advanced the version
// since the caller's read, which surfaces as a conflict.
func (r *Repository) UpdateBalance(id int64, newBalance decimal.Decimal, version int) error {
	query := `
		UPDATE cards
		SET balance = $1, version = version + 1
		WHERE id = $2 AND version = $3`
	res, err := r.db.Exec(query, newBalance, id, version)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.Conflictf("card %d was modified concurrently, balance update rejected", id)
	}
	return nil
}
