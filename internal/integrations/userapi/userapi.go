package userapi

import (
	"context"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/integrations/rest"
	"github.com/Dan9191/virtualcard/internal/models"
)

// Client handles integration with the user service
type Client struct {
	rest *rest.Client
}

// NewClient initializes a new user service client
func NewClient(baseURL string, log *logrus.Logger) *Client {
	return &Client{rest: rest.New(baseURL, log)}
}

// GetUser fetches a user by username for ownership lookup
func (c *Client) GetUser(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	if err := c.rest.Get(ctx, "/user/"+url.PathEscape(username), user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetCredentials fetches the stored credentials of a user for login checks
func (c *Client) GetCredentials(ctx context.Context, username string) (*models.UserCredentials, error) {
	creds := &models.UserCredentials{}
	if err := c.rest.Get(ctx, "/user/credentials/"+url.PathEscape(username), creds); err != nil {
		return nil, err
	}
	return creds, nil
}
