package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/complisync/internal/server/handlers"
)

// AuthMiddleware создает middleware для проверки JWT токена.
// Сверку userId из запроса с пользователем токена делают сами handlers,
// потому что userId может прийти и в query, и в теле.
func AuthMiddleware(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				writeError(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") {
				logger.Warn("Invalid Authorization header format")
				writeError(w, "Unauthorized: invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, strings.TrimSpace(tokenString))
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				writeError(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ctx := handlers.WithUser(r.Context(), claims.UserID, claims.Username)

			logger.Debug("User authenticated", "user_id", claims.UserID, "username", claims.Username)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
