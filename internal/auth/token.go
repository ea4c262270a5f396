package auth

import (
	"errors"
	"fmt"
	"math"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/library-service/internal/domain"
)

var (
	// ErrSecretMissing means no signing secret is configured. Tokens are
	// neither issued nor accepted in that state.
	ErrSecretMissing = errors.New("jwt signing secret not configured")
	// ErrLifetimeMalformed means the configured lifetime expression does not parse.
	ErrLifetimeMalformed = errors.New("jwt lifetime malformed")
	// ErrLifetimeInvalid means the lifetime parsed to a non-positive or unrepresentable span.
	ErrLifetimeInvalid = errors.New("jwt lifetime invalid")

	ErrTokenMissing = errors.New("token missing")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret   []byte
	lifetime string
	now      func() time.Time
}

// NewTokenManager builds a new manager. lifetime is a duration expression as
// accepted by ParseDuration; an empty expression means the one hour default.
// Neither argument is validated until a token is issued or verified.
func NewTokenManager(secret, lifetime string) *TokenManager {
	if lifetime == "" {
		lifetime = "1h"
	}
	return &TokenManager{secret: []byte(secret), lifetime: lifetime, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	tm.now = now
	return tm
}

// Claims describes JWT payload.
type Claims struct {
	LibrarianID string      `json:"librarianId"`
	Email       string      `json:"email"`
	Role        domain.Role `json:"role"`
	Name        string      `json:"name"`
	jwt.RegisteredClaims
}

// Lifetime parses the configured lifetime expression.
func (tm *TokenManager) Lifetime() (time.Duration, error) {
	seconds, err := ParseDuration(tm.lifetime)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLifetimeMalformed, err)
	}
	if seconds <= 0 || seconds > math.MaxInt64/int64(time.Second) {
		return 0, fmt.Errorf("%w: %d seconds", ErrLifetimeInvalid, seconds)
	}
	return Seconds(seconds), nil
}

// Issue builds and signs a JWT for the librarian.
func (tm *TokenManager) Issue(l *domain.Librarian) (domain.Token, error) {
	if len(tm.secret) == 0 {
		return domain.Token{}, ErrSecretMissing
	}
	ttl, err := tm.Lifetime()
	if err != nil {
		return domain.Token{}, err
	}

	issuedAt := tm.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(ttl)
	claims := &Claims{
		LibrarianID: l.ID,
		Email:       l.Email,
		Role:        l.Role,
		Name:        l.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   l.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return domain.Token{}, err
	}
	return domain.Token{Value: tokenString, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify validates a token and returns the identity it carries. A token is
// valid strictly before its expiry second; at that instant it is expired.
func (tm *TokenManager) Verify(tokenStr string) (*domain.Identity, error) {
	if tokenStr == "" {
		return nil, ErrTokenMissing
	}
	if len(tm.secret) == 0 {
		return nil, ErrSecretMissing
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.LibrarianID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	return &domain.Identity{
		LibrarianID: claims.LibrarianID,
		Email:       claims.Email,
		Role:        claims.Role,
		Name:        claims.Name,
	}, nil
}
