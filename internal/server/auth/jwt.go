package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// MinSecretLength is the shortest accepted HMAC secret, in bytes.
const MinSecretLength = 16

// SessionToken is a signed bundle of {subject email, issued at, expires at}.
// It is never stored server-side.
type SessionToken struct {
	Value     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer issues and verifies session tokens.
type TokenIssuer interface {
	Issue(subjectEmail string) (*SessionToken, error)
	Verify(token string) (string, error)
}

type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewJWTIssuer builds an HS256 issuer. A nil clock means the wall clock.
func NewJWTIssuer(secret []byte, issuer string, ttl time.Duration, clock clockwork.Clock) (*JWTIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt ttl must be positive")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &JWTIssuer{secret: secret, issuer: issuer, ttl: ttl, clock: clock}, nil
}

func (j *JWTIssuer) Issue(subjectEmail string) (*SessionToken, error) {
	if subjectEmail == "" {
		return nil, fmt.Errorf("%w: empty subject", common.ErrInvalidInput)
	}

	now := j.clock.Now()
	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(j.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    j.issuer,
		Subject:   subjectEmail,
		IssuedAt:  iat,
		ExpiresAt: exp,
	})

	signed, err := token.SignedString(j.secret)
	if err != nil {
		return nil, err
	}

	return &SessionToken{
		Value:     signed,
		Subject:   subjectEmail,
		IssuedAt:  iat.Time,
		ExpiresAt: exp.Time,
	}, nil
}

// Verify returns the subject email of a valid token. Expired tokens yield
// common.ErrTokenExpired; any other defect yields common.ErrTokenInvalid.
func (j *JWTIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrTokenInvalid
	}

	if claims.Subject == "" {
		return "", common.ErrTokenInvalid
	}

	return claims.Subject, nil
}
