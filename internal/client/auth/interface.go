package auth

import (
	"context"

	"github.com/iudanet/complisync/internal/client/storage"
)

//go:generate moq -out service_mock.go . Service

// Service defines the session operations used by the CLI.
// The session is a bearer token issued by auth.php and kept in the local database.
type Service interface {
	// Login аутентифицирует пользователя на сервере и сохраняет сессию
	Login(ctx context.Context, serverURL, username, password string) (*storage.AuthData, error)

	// Logout удаляет локальную сессию
	Logout(ctx context.Context) error

	// Session returns the stored session.
	// Returns ErrNotAuthenticated if there is none, ErrSessionExpired if it has expired
	Session(ctx context.Context) (*storage.AuthData, error)

	// Token returns the bearer token for API requests
	Token(ctx context.Context) (string, error)
}
