package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	CreatorIDKey contextKey = "creator_id"
	RoleKey      contextKey = "role"
)

const (
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// AuthMiddleware validates tokens issued by the hosted auth service. The
// subject claim carries the creator id; a missing role means creator.
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" || strings.Contains(tokenString, " ") {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if !token.Valid {
				logger.Debug("Invalid token")
				RespondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			subject, err := claims.GetSubject()
			if err != nil || subject == "" {
				logger.Warn("Missing sub in token claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			creatorID, err := uuid.Parse(subject)
			if err != nil {
				logger.Warn("Token subject is not a creator id", zap.String("sub", subject))
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			role, _ := claims["role"].(string)
			if role == "" {
				role = RoleCreator
			}

			ctx := WithCreator(r.Context(), creatorID, role)

			logger.Debug("Creator authenticated",
				zap.String("creator_id", creatorID.String()),
				zap.String("role", role),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithCreator stores the authenticated identity on the context
func WithCreator(ctx context.Context, creatorID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, CreatorIDKey, creatorID)
	return context.WithValue(ctx, RoleKey, role)
}

// GetCreatorID extracts the creator ID from request context
func GetCreatorID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(CreatorIDKey).(uuid.UUID)
	return id, ok
}

// GetRole extracts the caller's role from request context
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
