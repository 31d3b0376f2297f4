package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// authConfig holds the credentials the service accepts. Leaving both
// empty disables authentication entirely.
type authConfig struct {
	JWTSecret   []byte
	APIKey      string
	BypassPaths []string
}

// trackerClaims are the JWT claims issued to investigation consoles.
type trackerClaims struct {
	OperatorID string   `json:"operator_id"`
	CaseID     string   `json:"case_id"`
	Roles      []string `json:"roles"`
	jwt.RegisteredClaims
}

// ctxKey defines a private type to avoid key collisions in context
type ctxKey string

var claimsCtxKey ctxKey = "claims"

// claimsFromContext extracts claims from a request context
func claimsFromContext(ctx context.Context) (*trackerClaims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(*trackerClaims)
	return c, ok
}

type authMiddleware struct {
	config authConfig
}

func newAuthMiddleware(config authConfig) *authMiddleware {
	return &authMiddleware{config: config}
}

func (am *authMiddleware) enabled() bool {
	return len(am.config.JWTSecret) > 0 || am.config.APIKey != ""
}

// Authenticate validates JWT or API key
func (am *authMiddleware) Authenticate(next http.Handler) http.Handler {
	if !am.enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, path := range am.config.BypassPaths {
			if strings.HasPrefix(r.URL.Path, path) {
				next.ServeHTTP(w, r)
				return
			}
		}

		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			if strings.HasPrefix(authHeader, "Bearer ") && len(am.config.JWTSecret) > 0 {
				token := strings.TrimPrefix(authHeader, "Bearer ")
				if claims, err := am.validateJWT(token); err == nil {
					ctx := context.WithValue(r.Context(), claimsCtxKey, claims)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
		}

		if apiKey := r.Header.Get("X-API-Key"); apiKey != "" && am.config.APIKey != "" {
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(am.config.APIKey)) == 1 {
				next.ServeHTTP(w, r)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"error":   "unauthorized",
			"message": "valid JWT token or API key required",
		})
	})
}

func (am *authMiddleware) validateJWT(tokenString string) (*trackerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &trackerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return am.config.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*trackerClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
