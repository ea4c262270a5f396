package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const attemptsKeyPrefix = "login_attempts:"

// LoginThrottle counts failed logins per email in Redis and locks the email
// out once the limit is reached inside the window. A nil throttle allows
// everything.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginThrottle returns nil when client is nil or maxAttempts is not positive.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if client == nil || maxAttempts <= 0 || window <= 0 {
		return nil
	}
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Allowed reports whether another login attempt may be made for email.
func (t *LoginThrottle) Allowed(ctx context.Context, email string) (bool, error) {
	if t == nil {
		return true, nil
	}
	count, err := t.client.Get(ctx, attemptsKey(email)).Int64()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return count < t.maxAttempts, nil
}

// RecordFailure increments the failure counter, starting the window on the
// first failure.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) error {
	if t == nil {
		return nil
	}
	key := attemptsKey(email)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return t.client.Expire(ctx, key, t.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	if t == nil {
		return nil
	}
	return t.client.Del(ctx, attemptsKey(email)).Err()
}

func attemptsKey(email string) string {
	return attemptsKeyPrefix + strings.ToLower(email)
}
