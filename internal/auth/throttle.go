package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fseda/Vidly/internal/models"
)

const throttleKeyPrefix = "login:fail:"

// LoginThrottle counts failed logins per email in Redis and locks the email
// out once maxAttempts is reached. The counter expires lockout after the
// first failure in a window.
type LoginThrottle struct {
	rdb         *redis.Client
	maxAttempts int
	lockout     time.Duration
}

func NewLoginThrottle(rdb *redis.Client, maxAttempts int, lockout time.Duration) *LoginThrottle {
	return &LoginThrottle{rdb: rdb, maxAttempts: maxAttempts, lockout: lockout}
}

// Allow reports whether another login attempt for email may proceed.
func (t *LoginThrottle) Allow(ctx context.Context, email string) (bool, error) {
	n, err := t.rdb.Get(ctx, throttleKey(email)).Int()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return n < t.maxAttempts, nil
}

// Fail records a failed attempt.
func (t *LoginThrottle) Fail(ctx context.Context, email string) error {
	key := throttleKey(email)
	n, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return t.rdb.Expire(ctx, key, t.lockout).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) error {
	return t.rdb.Del(ctx, throttleKey(email)).Err()
}

func throttleKey(email string) string {
	return throttleKeyPrefix + models.NormalizeEmail(email)
}
