package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/localnerve/datapackage-registry/internal/models"
	"github.com/localnerve/datapackage-registry/internal/types"
)

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Authenticator issues bearer tokens and resolves them back to users.
// It keeps no session state: every request is resolved from its token.
type Authenticator struct {
	Accounts *AccountStore
	Secret   []byte
	Issuer   string
	TTL      time.Duration

	// now is replaced in tests.
	now func() time.Time
}

// NewAuthenticator returns an Authenticator signing HS256 tokens with secret.
func NewAuthenticator(accounts *AccountStore, secret, issuer string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		Accounts: accounts,
		Secret:   []byte(secret),
		Issuer:   issuer,
		TTL:      ttl,
		now:      time.Now,
	}
}

func (a *Authenticator) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}

// IssueToken returns a signed token whose subject is the user's id.
func (a *Authenticator) IssueToken(user *models.User) (string, error) {
	now := a.clock()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(user.ID, 10),
		Issuer:    a.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

// CurrentUser verifies token and loads the user it names. A valid token for
// a user that no longer exists yields ErrUserNotFound.
func (a *Authenticator) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if a.Issuer != "" && !claims.VerifyIssuer(a.Issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return a.Accounts.FindUserByID(ctx, id)
}

// TokenForCredentials exchanges a user name (or email) and secret for a token.
func (a *Authenticator) TokenForCredentials(ctx context.Context, username, email, secret string) (string, error) {
	if username == "" && email == "" {
		return "", types.InvalidInput("User name or email is required")
	}
	if secret == "" {
		return "", types.InvalidInput("Secret key is required")
	}

	var (
		user *models.User
		err  error
	)
	if username != "" {
		user, err = a.Accounts.FindUserByName(ctx, username)
	} else {
		user, err = a.Accounts.FindUserByEmail(ctx, email)
	}
	if errors.Is(err, ErrUserNotFound) {
		return "", types.UserNotFound("User not found")
	}
	if err != nil {
		return "", types.Unexpected(err)
	}

	if user.Secret == "" || subtle.ConstantTimeCompare([]byte(user.Secret), []byte(secret)) != 1 {
		return "", types.SecretError("Secret key do not match")
	}

	token, err := a.IssueToken(user)
	if err != nil {
		return "", types.Generic("Failed to issue token", err)
	}
	return token, nil
}
