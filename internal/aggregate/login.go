package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/virtualcard/internal/models"
)

// UserClient is the user service surface consumed by login.
type UserClient interface {
	GetCredentials(ctx context.Context, username string) (*models.UserCredentials, error)
}

// Authenticator verifies credentials against the user service and issues
// JWT bearer tokens for the aggregate routes.
type Authenticator struct {
	users  UserClient
	secret []byte
	expiry time.Duration
	log    *logrus.Logger
}

// NewAuthenticator initializes a new authenticator
func NewAuthenticator(users UserClient, secret string, expiry time.Duration, log *logrus.Logger) *Authenticator {
	return &Authenticator{
		users:  users,
		secret: []byte(secret),
		expiry: expiry,
		log:    log,
	}
}

// Login authenticates a user and returns a signed JWT token. Unknown users
// and wrong passwords are indistinguishable to the caller.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	creds, err := a.users.GetCredentials(ctx, username)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   creds.Username,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.expiry)),
	})
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	a.log.Infof("User logged in: %s", username)
	return tokenString, nil
}
