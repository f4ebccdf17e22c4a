package cardapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/integrations/rest"
	"github.com/Dan9191/virtualcard/internal/models"
)

// Client handles integration with the card service
type Client struct {
	rest *rest.Client
}

// NewClient initializes a new card service client
func NewClient(baseURL string, log *logrus.Logger) *Client {
	return &Client{rest: rest.New(baseURL, log)}
}

// GetValidCard fetches a card by card number; blocked and missing cards
// both come back as NotFound.
func (c *Client) GetValidCard(ctx context.Context, code string) (*models.Card, error) {
	card := &models.Card{}
	path := "/cards/" + url.PathEscape(code)
	if err := c.rest.Get(ctx, path, card); err != nil {
		return nil, err
	}
	return card, nil
}

// GetCoveredCard fetches a card by card number only if its balance covers
// the given amount.
func (c *Client) GetCoveredCard(ctx context.Context, code string, amount decimal.Decimal) (*models.Card, error) {
	card := &models.Card{}
	path := fmt.Sprintf("/cards/covered/%s?amount=%s", url.PathEscape(code), amount)
	if err := c.rest.Get(ctx, path, card); err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateBalance sets the card's balance to newBalance
func (c *Client) UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error {
	path := fmt.Sprintf("/cards/%d/updateBalance", id)
	return c.rest.Put(ctx, path, models.UpdateBalanceRequest{NewBalance: newBalance})
}
