// Package shared provides small helpers used across the bugle packages.
package shared

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// GetEnvOrDefault returns the environment variable value or a default if not set.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// MaskSecret masks a secret for logging, keeping only a short prefix of long values.
func MaskSecret(secret string) string {
	if len(secret) > 12 {
		return secret[:4] + "***"
	}
	return "***"
}

// MaskURL replaces the password of a connection URL with a mask.
// Values that do not parse as URLs are masked entirely.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return MaskSecret(raw)
	}
	if _, ok := u.User.Password(); !ok {
		return u.String()
	}
	// url.UserPassword would escape the mask, so splice it into the userinfo.
	u.User = url.User(u.User.Username())
	user := u.User.String() + "@"
	return strings.Replace(u.String(), user, strings.TrimSuffix(user, "@")+":***@", 1)
}

// ConnectRedis creates and validates a Redis connection.
// Returns the client and nil on success, or nil and an error on failure.
func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return client, nil
}
