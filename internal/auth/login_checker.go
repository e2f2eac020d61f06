package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	secret      []byte
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, jwtSecret string, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		secret:      []byte(jwtSecret),
		redisClient: redisClient,
	}
}

// IsLogged verifies the token signature and that its redis session is still alive.
// It returns the identity the token was issued for.
func (c *LoginChecker) IsLogged(ctx context.Context, token string) (string, bool, error) {
	claims, err := parseToken(c.secret, token)
	if err != nil {
		return "", false, nil
	}

	cmd := c.redisClient.Get(ctx, sessionKeyPrefix+claims.ID)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}

	createdAtUnix, err := strconv.ParseInt(cmd.Val(), 10, 64)
	if err != nil {
		return "", false, err
	}

	if time.Since(time.Unix(createdAtUnix, 0)) > c.ttl {
		return "", false, nil
	}

	return claims.Email, true, nil
}
