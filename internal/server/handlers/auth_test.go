package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/internal/server/storage"
	"github.com/iudanet/complisync/internal/validation"
	"github.com/iudanet/complisync/pkg/api"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:         []byte("test-secret-key-with-enough-length"),
		AccessTokenTTL: 15 * time.Minute,
	}
}

// newUserStorage returns a mock holding one user with the given password
func newUserStorage(t *testing.T, password string) *storage.UserStorageMock {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           "user123",
		Username:     "testuser",
		PasswordHash: string(hash),
	}

	return &storage.UserStorageMock{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			if username != user.Username {
				return nil, storage.ErrUserNotFound
			}
			return user, nil
		},
		UpdateLastLoginFunc: func(ctx context.Context, userID string, lastLogin time.Time) error {
			return nil
		},
	}
}

func doLogin(t *testing.T, handler *AuthHandler, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth.php", reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.Login(w, req)
	return w
}

func TestAuthHandler_Login_Success(t *testing.T) {
	userStorage := newUserStorage(t, "correct horse battery")
	jwtConfig := testJWTConfig()
	handler := NewAuthHandler(setupTestLogger(), userStorage, jwtConfig)

	w := doLogin(t, handler, api.LoginRequest{Username: "testuser", Password: "correct horse battery"})

	assert.Equal(t, http.StatusOK, w.Code)

	var response api.LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	assert.True(t, response.Success)
	assert.Equal(t, "user123", response.UserID)
	assert.Equal(t, int64(900), response.ExpiresIn)

	claims, err := ValidateAccessToken(jwtConfig, response.Token)
	require.NoError(t, err)
	assert.Equal(t, "user123", claims.Subject)
	assert.Equal(t, "testuser", claims.Username)

	assert.Len(t, userStorage.UpdateLastLoginCalls(), 1)
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newUserStorage(t, "pw"), testJWTConfig())

	w := doLogin(t, handler, "{not json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_EmptyFields(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newUserStorage(t, "pw"), testJWTConfig())

	tests := []struct {
		req  api.LoginRequest
		name string
	}{
		{name: "empty username", req: api.LoginRequest{Password: "pw"}},
		{name: "invalid username", req: api.LoginRequest{Username: "a b", Password: "pw"}},
		{name: "empty password", req: api.LoginRequest{Username: "testuser"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doLogin(t, handler, tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(setupTestLogger(), newUserStorage(t, "correct horse battery"), testJWTConfig())

	tests := []struct {
		req  api.LoginRequest
		name string
	}{
		{name: "user not found", req: api.LoginRequest{Username: "nobody", Password: "correct horse battery"}},
		{name: "wrong password", req: api.LoginRequest{Username: "testuser", Password: "wrong"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doLogin(t, handler, tt.req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthHandler_Login_StorageError(t *testing.T) {
	userStorage := &storage.UserStorageMock{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return nil, errors.New("database is locked")
		},
	}
	handler := NewAuthHandler(setupTestLogger(), userStorage, testJWTConfig())

	w := doLogin(t, handler, api.LoginRequest{Username: "testuser", Password: "pw"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Login_UpdateLastLoginError(t *testing.T) {
	userStorage := newUserStorage(t, "correct horse battery")
	userStorage.UpdateLastLoginFunc = func(ctx context.Context, userID string, lastLogin time.Time) error {
		return errors.New("update failed")
	}
	handler := NewAuthHandler(setupTestLogger(), userStorage, testJWTConfig())

	w := doLogin(t, handler, api.LoginRequest{Username: "testuser", Password: "correct horse battery"})

	// ошибка last_login не мешает входу
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewUser(t *testing.T) {
	user, err := NewUser("alice", "a-long-enough-password")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("a-long-enough-password")))

	_, err = NewUser("x", "a-long-enough-password")
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = NewUser("alice", "short")
	assert.ErrorIs(t, err, validation.ErrInvalid)

	// bcrypt отбрасывает байты сверх 72, такой пароль не создается
	_, err = NewUser("alice", string(bytes.Repeat([]byte("p"), validation.MaxPasswordLen+1)))
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestValidateAccessToken(t *testing.T) {
	cfg := testJWTConfig()

	token, _, err := GenerateAccessToken(cfg, "user123", "testuser")
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		claims, err := ValidateAccessToken(cfg, token)
		require.NoError(t, err)
		assert.Equal(t, "user123", claims.UserID)
		assert.Equal(t, Issuer, claims.Issuer)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := JWTConfig{Secret: []byte("another-secret"), AccessTokenTTL: time.Minute}
		_, err := ValidateAccessToken(other, token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := JWTConfig{Secret: cfg.Secret, AccessTokenTTL: -time.Minute}
		old, _, err := GenerateAccessToken(expired, "user123", "testuser")
		require.NoError(t, err)

		_, err = ValidateAccessToken(cfg, old)
		assert.Error(t, err)
	})
}
