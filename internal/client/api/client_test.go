package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/pkg/api"
)

func staticToken(token string) *TokenSourceMock {
	return &TokenSourceMock{
		TokenFunc: func(ctx context.Context) (string, error) {
			return token, nil
		},
	}
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/", nil, nil)

	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8080", client.BaseURL())
	assert.Equal(t, "http://localhost:8080/health", client.HealthURL())
	assert.NotNil(t, client.HTTPClient())
}

func TestClient_LoadTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/documents-load.php", r.URL.Path)
		assert.Equal(t, "u-1", r.URL.Query().Get("userId"))

		// Обязательные заголовки
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
		assert.Equal(t, "complisync", r.Header.Get("X-Requested-With"))

		_, _ = w.Write([]byte(`{"success":true,"documents":[{"id":"1","title":"a"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, staticToken("tok"), nil)

	records, err := client.LoadTable(context.Background(), "documents", "u-1")
	require.NoError(t, err)
	assert.Equal(t, []models.Record{{"id": "1", "title": "a"}}, records)
}

func TestClient_LoadTable_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		checkErr func(t *testing.T, err error)
	}{
		{
			name:   "html error page",
			status: http.StatusOK,
			body:   "<html><body>Fatal error</body></html>",
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name:   "http status with json message",
			status: http.StatusInternalServerError,
			body:   `{"success":false,"error":"db","message":"database down"}`,
			checkErr: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
				assert.Equal(t, "database down", statusErr.Message)
				assert.Contains(t, err.Error(), "server error (500): database down")
				assert.NotErrorIs(t, err, ErrMalformedResponse)
			},
		},
		{
			name:   "http status with html",
			status: http.StatusBadGateway,
			body:   "<html>bad gateway</html>",
			checkErr: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
				assert.Contains(t, err.Error(), "request failed with status 502")
			},
		},
		{
			name:   "success false",
			status: http.StatusOK,
			body:   `{"success":false,"message":"no access"}`,
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnsuccessful)
				assert.Contains(t, err.Error(), "no access")
			},
		},
		{
			name:   "unexpected shape",
			status: http.StatusOK,
			body:   `{"success":true,"rows":[]}`,
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, api.ErrNoRecords)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil, nil)
			_, err := client.LoadTable(context.Background(), "documents", "u")
			require.Error(t, err)
			tt.checkErr(t, err)
		})
	}
}

func TestClient_LoadTable_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.LoadTable(ctx, "documents", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_SyncTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/raci-sync.php", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		// Пустой токен: заголовок не отправляется
		assert.Empty(t, r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"userId":"u1","raci":[{"id":"r1"}]}`, string(body))

		_, _ = w.Write([]byte(`{"success":true,"message":"ok","count":1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, staticToken(""), nil)

	resp, err := client.SyncTable(context.Background(), "raci", "u1", []models.Record{{"id": "r1"}})
	require.NoError(t, err)
	assert.Equal(t, &api.SyncResponse{Success: true, Message: "ok", Count: 1}, resp)
}

func TestClient_SyncTable_NotSuccessful(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"quota exceeded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)

	_, err := client.SyncTable(context.Background(), "raci", "u1", nil)
	assert.ErrorIs(t, err, ErrUnsuccessful)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_TokenError(t *testing.T) {
	errNoSession := errors.New("no session")
	tokens := &TokenSourceMock{
		TokenFunc: func(ctx context.Context) (string, error) {
			return "", errNoSession
		},
	}

	client := NewClient("http://127.0.0.1:1", tokens, nil)
	_, err := client.LoadTable(context.Background(), "documents", "u")
	assert.ErrorIs(t, err, errNoSession)
	assert.Len(t, tokens.TokenCalls(), 1)
}

func TestClient_Global(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/global-load.php":
			assert.Equal(t, "u1", r.URL.Query().Get("userId"))
			_, _ = w.Write([]byte(`{"success":true,"data":{"documents":[{"id":"d1"}],"bibliotheque":{"documents":[{"id":"b1"}],"groups":[]}}}`))
		case "/global-sync.php":
			var req api.GlobalSyncRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "u1", req.UserID)
			assert.Len(t, req.Data.Membres, 1)
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)

	data, err := client.LoadGlobal(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.Record{{"id": "d1"}}, data.Documents)
	require.NotNil(t, data.Bibliotheque)
	assert.Equal(t, []models.Record{{"id": "b1"}}, data.Bibliotheque.Documents)
	assert.Nil(t, data.Exigences)

	_, err = client.SyncGlobal(context.Background(), "u1", models.GlobalData{Membres: []models.Record{{"id": "m1"}}})
	require.NoError(t, err)
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Password != "correct horse" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "unauthorized", Message: "invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.LoginResponse{Success: true, Token: "jwt", UserID: "u1", ExpiresIn: 3600})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)

	resp, err := client.Login(context.Background(), api.LoginRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.Token)
	assert.Equal(t, "u1", resp.UserID)

	_, err = client.Login(context.Background(), api.LoginRequest{Username: "alice", Password: "wrong"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

// Пустой ответ 2xx не считается успешной отправкой
func TestClient_SyncTable_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)

	resp, err := client.SyncTable(context.Background(), "raci", "u1", nil)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
