package transaction

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Dan9191/virtualcard/internal/models"
)

// Repository provides database operations for the ledger. The ledger is
// append-only: rows are inserted and read, never updated or deleted.
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTransaction appends a new ledger entry
func (r *Repository) CreateTransaction(tx *models.Transaction) error {
	query := `
		INSERT INTO transactions (code, sender_card_id, recipient_card_id, type, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, tx.Code, tx.SenderCardID, tx.RecipientCardID, tx.Type, tx.Amount).
		Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionsByCard returns ledger entries where the card is sender or
// recipient, newest first, bounded by the time window and page window.
func (r *Repository) GetTransactionsByCard(cardID int64, offset, limit int, lower, upper time.Time) ([]models.Transaction, error) {
	query := `
		SELECT id, code, sender_card_id, recipient_card_id, type, amount, created_at
		FROM transactions
		WHERE (sender_card_id = $1 OR recipient_card_id = $1)
		  AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`
	rows, err := r.db.Query(query, cardID, lower, upper, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var sender, recipient sql.NullInt64
		if err := rows.Scan(&tx.ID, &tx.Code, &sender, &recipient, &tx.Type, &tx.Amount, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if sender.Valid {
			tx.SenderCardID = &sender.Int64
		}
		if recipient.Valid {
			tx.RecipientCardID = &recipient.Int64
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// CountTransactionsByCard returns the total number of entries matching the
// card and time window, used for pagination metadata.
func (r *Repository) CountTransactionsByCard(cardID int64, lower, upper time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE (sender_card_id = $1 OR recipient_card_id = $1)
		  AND created_at >= $2 AND created_at <= $3`
	var count int
	if err := r.db.QueryRow(query, cardID, lower, upper).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
