package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sultonabiev/task-management/internal/common/clock"
	"github.com/sultonabiev/task-management/internal/observability/metrics"
	userdomain "github.com/sultonabiev/task-management/internal/user/domain"
)

// TokenIssuer signs short-lived HS256 access tokens carrying the user id
// and username.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenIssuer(secret string, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
	}
}

func (i *TokenIssuer) Issue(user userdomain.User) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub": int64(user.ID),
		"usr": user.Username,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	metrics.AccessTokensIssued.Inc()
	return tokenString, expiresAt, nil
}
