package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/Rishiraj17/backend-foundation/internal/auth/service TokenGenerator

import (
	"errors"
	"time"

	apperrors "github.com/Rishiraj17/backend-foundation/internal/errors"
	"github.com/golang-jwt/jwt/v5"
)

type TokenGenerator interface {
	Issue(accountID string) (string, time.Time, error)
	Verify(tokenString string) (string, error)
}

// TokenService mints and verifies short-lived stateless access tokens.
// Verification never touches storage, so revoking a session does not
// retract access tokens issued before the revocation; they die at their
// natural expiry.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

func NewTokenService(secret string, expiryMinutes int) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		expiry: time.Duration(expiryMinutes) * time.Minute,
	}
}

func (ts *TokenService) AccessTokenExpiry() time.Duration {
	return ts.expiry
}

func (ts *TokenService) Issue(accountID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ts.expiry)

	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify parses and validates an access token and returns the account id
// it was issued to.
func (ts *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrTokenInvalid
		}
		return ts.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrTokenExpired
		}
		return "", apperrors.ErrTokenInvalid
	}

	if !token.Valid || claims.Subject == "" {
		return "", apperrors.ErrTokenInvalid
	}

	return claims.Subject, nil
}
