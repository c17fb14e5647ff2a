package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	ownerClaimsKey contextKey = "ownerClaims"
	barberIDKey    contextKey = "barberID"
)

// OwnerJWT enforces an HMAC-signed JWT for owner/admin endpoints.
func OwnerJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseBearer(r, secret)
			if !ok {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ownerClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffJWT enforces a barber token and stashes the barber ID (the token
// subject) in the request context.
func StaffJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseBearer(r, secret)
			if !ok || claims.Subject == "" {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), barberIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseBearer(r *http.Request, secret string) (jwt.RegisteredClaims, bool) {
	if secret == "" {
		return jwt.RegisteredClaims{}, false
	}
	auth := r.Header.Get("Authorization")
	if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
		return jwt.RegisteredClaims{}, false
	}
	tokenString := strings.TrimPrefix(auth, "Bearer ")
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return jwt.RegisteredClaims{}, false
	}
	return claims, true
}

// OwnerClaimsFromContext returns owner JWT claims if present.
func OwnerClaimsFromContext(ctx context.Context) (jwt.RegisteredClaims, bool) {
	claims, ok := ctx.Value(ownerClaimsKey).(jwt.RegisteredClaims)
	return claims, ok
}

// BarberIDFromContext returns the authenticated barber's ID if present.
func BarberIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(barberIDKey).(string)
	return id, ok && id != ""
}

// WithBarberID injects a barber ID into the context. Intended for tests and
// in-process callers that bypass the HTTP middleware.
func WithBarberID(ctx context.Context, barberID string) context.Context {
	return context.WithValue(ctx, barberIDKey, barberID)
}
