package rdx

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

// Init connects to Redis. The client is shared by the token allowlist
// and the stock-update pub/sub channel.
func Init() error {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return Conn.Ping(ctx).Err()
}

// The external auth service maintains the allowlist: it writes
// "auth:token:<token>" -> userID with the session TTL on login and
// deletes the key on logout or revocation.
const tokenPrefix = "auth:token:"

// IsTokenValid reports whether the token is present and unrevoked, and
// returns the owning user id.
func IsTokenValid(ctx context.Context, token string) (string, bool) {
	userID, err := Conn.Get(ctx, tokenPrefix+token).Result()
	if err != nil {
		return "", false
	}
	return userID, true
}
