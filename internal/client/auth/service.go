package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/complisync/internal/client/storage"
	"github.com/iudanet/complisync/internal/validation"
	pkgapi "github.com/iudanet/complisync/pkg/api"
)

//go:generate moq -out authenticator_mock.go . Authenticator

// Authenticator performs the login request. *api.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.LoginResponse, error)
}

// SessionService предоставляет функции авторизации и хранит сессию
type SessionService struct {
	api    Authenticator
	store  storage.AuthStorage
	logger *slog.Logger
	now    func() time.Time
}

// Compile-time check that SessionService implements Service
var _ Service = (*SessionService)(nil)

// NewService создает новый сервис авторизации. api может быть nil, если нужен
// только доступ к сохраненной сессии.
func NewService(api Authenticator, store storage.AuthStorage, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		api:    api,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Login выполняет аутентификацию пользователя и сохраняет сессию
func (s *SessionService) Login(ctx context.Context, serverURL, username, password string) (*storage.AuthData, error) {
	// Валидация входных данных
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}
	if s.api == nil {
		return nil, errors.New("no server client configured")
	}

	resp, err := s.api.Login(ctx, pkgapi.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	session := &storage.AuthData{
		Username:    username,
		UserID:      resp.UserID,
		AccessToken: resp.Token,
		ServerURL:   serverURL,
	}
	if resp.ExpiresIn > 0 {
		session.ExpiresAt = s.now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix()
	}

	// Недостающее берем из claims токена: подпись проверяет только сервер
	claims, err := parseClaims(resp.Token)
	if err != nil {
		s.logger.Debug("Token is not a readable JWT", "error", err)
	} else {
		if session.UserID == "" {
			session.UserID = claims.Subject
		}
		if session.ExpiresAt == 0 && claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Unix()
		}
	}

	if session.UserID == "" {
		return nil, errors.New("login failed: server did not return a user id")
	}

	if err := s.store.SaveAuth(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Logged in", "username", username, "user_id", session.UserID)
	return session, nil
}

// Logout удаляет локальные данные авторизации
func (s *SessionService) Logout(ctx context.Context) error {
	if err := s.store.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete local auth data: %w", err)
	}
	return nil
}

// Session returns the stored, unexpired session.
func (s *SessionService) Session(ctx context.Context) (*storage.AuthData, error) {
	session, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	if session.ExpiresAt > 0 && !s.now().Before(time.Unix(session.ExpiresAt, 0)) {
		return session, ErrSessionExpired
	}
	return session, nil
}

// Token implements the API client's token source.
func (s *SessionService) Token(ctx context.Context) (string, error) {
	session, err := s.Session(ctx)
	if err != nil {
		return "", err
	}
	return session.AccessToken, nil
}

// parseClaims читает claims без проверки подписи
func parseClaims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	return claims, nil
}
