package middleware

import (
	"credikhaata/internal/config"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

// OwnerIDFromContext returns the authenticated shopkeeper identity the auth
// middleware attached to the request. Every owner-scoped operation reads it;
// the handlers never authenticate on their own.
func OwnerIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ownerIDKey).(int64)
	return id, ok
}

// WithOwnerID is exposed for handler tests.
func WithOwnerID(ctx context.Context, ownerID int64) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Dev mode: every request acts as owner 1.
				next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), 1)))
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, ok := validateJWT(r, cfg.JWTSecret, logger)
			if !ok {
				http.Error(w, `{"error":{"message":"Unauthorized"}}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), ownerID)))
		})
	}
}

func validateJWT(r *http.Request, secret string, logger *slog.Logger) (int64, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		logger.Warn("AuthMiddleware: Missing Authorization header")
		return 0, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		logger.Warn("AuthMiddleware: Invalid Authorization header format")
		return 0, false
	}
	tokenString := parts[1]

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			logger.Warn("AuthMiddleware: Unexpected signing method")
			return nil, http.ErrAbortHandler
		}
		return []byte(secret), nil
	})

	if err != nil || !token.Valid {
		logger.Warn("AuthMiddleware: Invalid token", "error", err)
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		logger.Warn("AuthMiddleware: Unexpected claims type")
		return 0, false
	}

	ownerID, ok := ownerIDFromClaims(claims)
	if !ok {
		logger.Warn("AuthMiddleware: Token carries no usable subject claim")
		return 0, false
	}

	return ownerID, true
}

func ownerIDFromClaims(claims jwt.MapClaims) (int64, bool) {
	switch sub := claims["sub"].(type) {
	case float64:
		return int64(sub), true
	case string:
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
