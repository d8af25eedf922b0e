package stocksock

import (
	"context"
	"fmt"

	"vitrine/middleware"
	"vitrine/models"
	"vitrine/rdx"
)

// JWTVerifier checks the token signature first, then the Redis allowlist
// so that revoked tokens are rejected even before their JWT expiry.
type JWTVerifier struct{}

func (JWTVerifier) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("missing token: %w", models.ErrUnauthorized)
	}
	claims, err := middleware.ParseToken(token)
	if err != nil {
		return "", err
	}
	userID, ok := rdx.IsTokenValid(ctx, token)
	if !ok {
		return "", fmt.Errorf("token revoked: %w", models.ErrUnauthorized)
	}
	if userID != claims.UserID {
		return "", fmt.Errorf("token user mismatch: %w", models.ErrUnauthorized)
	}
	return claims.UserID, nil
}
