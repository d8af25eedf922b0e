package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vitrine/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return signed
}

func TestValidateJWTRoundTrip(t *testing.T) {
	raw := signToken(t, Claims{
		Username: "ada",
		UserID:   "u1",
		Role:     []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ValidateJWT("Bearer " + raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, []string{"user"}, claims.Role)
}

func TestValidateJWTRejectsMissingPrefix(t *testing.T) {
	_, err := ValidateJWT("no-bearer-here")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	raw := signToken(t, Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	_, err := ParseToken(raw)
	assert.Error(t, err)
}

func TestAuthenticateSetsContext(t *testing.T) {
	raw := signToken(t, Claims{
		UserID: "u7",
		Role:   []string{"admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	var gotUser string
	var gotRoles []string
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gotUser, _ = r.Context().Value(globals.UserIDKey).(string)
		gotRoles, _ = r.Context().Value(globals.RoleKey).([]string)
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+raw)
	w := httptest.NewRecorder()
	handler(w, r, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u7", gotUser)
	assert.Equal(t, []string{"admin"}, gotRoles)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	handler := Authenticate(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		t.Fatal("handler should not run")
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	handler(w, r, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	adminToken := signToken(t, Claims{
		UserID: "u1",
		Role:   []string{"admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	userToken := signToken(t, Claims{
		UserID: "u2",
		Role:   []string{"user"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	handler := Authenticate(RequireRole(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
	}, "admin"))

	call := func(token string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler(w, r, nil)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call(adminToken))
	assert.Equal(t, http.StatusForbidden, call(userToken))
}
