package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"vitrine/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Username string   `json:"username"`
	UserID   string   `json:"userId"`
	Email    string   `json:"email,omitempty"`
	Role     []string `json:"role"`
	jwt.RegisteredClaims
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, err := ValidateJWT(r.Header.Get("Authorization"))
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.RoleKey, claims.Role)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireRole gates a handler on one of the caller's roles matching.
func RequireRole(next httprouter.Handle, roles ...string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		have, _ := r.Context().Value(globals.RoleKey).([]string)
		for _, want := range roles {
			for _, role := range have {
				if role == want {
					next(w, r, ps)
					return
				}
			}
		}
		http.Error(w, "Forbidden", http.StatusForbidden)
	}
}

// ValidateJWT parses and verifies a "Bearer <token>" header value.
func ValidateJWT(tokenString string) (*Claims, error) {
	if !strings.HasPrefix(tokenString, "Bearer ") {
		return nil, fmt.Errorf("invalid token")
	}
	return ParseToken(strings.TrimPrefix(tokenString, "Bearer "))
}

// ParseToken verifies a raw token string (no Bearer prefix).
func ParseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}
