package txapi

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/integrations/rest"
	"github.com/Dan9191/virtualcard/internal/models"
)

// Client handles integration with the transaction service
type Client struct {
	rest *rest.Client
}

// NewClient initializes a new transaction service client
func NewClient(baseURL string, log *logrus.Logger) *Client {
	return &Client{rest: rest.New(baseURL, log)}
}

// CreateTransaction appends a ledger entry on the transaction service
func (c *Client) CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error) {
	tx := &models.Transaction{}
	if err := c.rest.Post(ctx, "/transactions", req, tx); err != nil {
		return nil, err
	}
	return tx, nil
}
