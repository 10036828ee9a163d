package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"solarshare/backend/services/workflow-service/internal/models"
	"solarshare/backend/services/workflow-service/internal/service"
)

type contextKey string

const actorKey contextKey = "actor"

// Authenticator turns a bearer token into an actor.
type Authenticator interface {
	ValidateToken(token string) (*service.Claims, error)
	ActorFromClaims(ctx context.Context, claims *service.Claims) (*models.Actor, error)
}

type tokenAuthenticator struct {
	tokens *service.TokenService
	auth   *service.AuthService
}

func (a tokenAuthenticator) ValidateToken(token string) (*service.Claims, error) {
	return a.tokens.ValidateToken(token)
}

func (a tokenAuthenticator) ActorFromClaims(ctx context.Context, claims *service.Claims) (*models.Actor, error) {
	return a.auth.ActorFromClaims(ctx, claims)
}

// NewAuthenticator pairs token validation with directory lookup.
func NewAuthenticator(tokens *service.TokenService, auth *service.AuthService) Authenticator {
	return tokenAuthenticator{tokens: tokens, auth: auth}
}

// AuthMiddleware validates bearer tokens and attaches the actor to the request context.
func AuthMiddleware(authn Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := authn.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			actor, err := authn.ActorFromClaims(r.Context(), claims)
			if err != nil {
				logger.Debug("token actor rejected", zap.String("user_id", claims.UserID), zap.Error(err))
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole lets through only actors holding one of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "forbidden")
		})
	}
}

// WithActor stores actor in ctx.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the authenticated actor.
func ActorFromContext(ctx context.Context) (*models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*models.Actor)
	return actor, ok && actor != nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
