package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/crucial707/scantron/internal/models"
)

const engineKey key = "engine"

// EngineLookup resolves an engine API token. *repo.EngineRepo satisfies it.
type EngineLookup interface {
	GetByToken(ctx context.Context, token string) (*models.Engine, error)
}

// EngineAuth authenticates scan engines with "Authorization: Token <api_token>" and stores
// the engine in the request context.
func EngineAuth(engines EngineLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Token ")
			token = strings.TrimSpace(token)
			if !ok || token == "" {
				jsonError(w, "missing engine token", http.StatusUnauthorized)
				return
			}
			engine, err := engines.GetByToken(r.Context(), token)
			if err != nil {
				slog.Error("engine token lookup failed", "error", err)
				jsonError(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if engine == nil {
				jsonError(w, "invalid engine token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), engineKey, engine)))
		})
	}
}

// EngineFromContext returns the engine set by EngineAuth, or nil.
func EngineFromContext(ctx context.Context) *models.Engine {
	e, _ := ctx.Value(engineKey).(*models.Engine)
	return e
}
