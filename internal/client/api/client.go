package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/pkg/api"
)

//go:generate moq -out tokensource_mock.go . TokenSource

// TokenSource supplies the bearer token for requests. An empty token sends no
// Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// maxLoggedBody сколько байт тела ответа попадает в лог
const maxLoggedBody = 512

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	baseURL    string
}

// NewClient создает новый API клиент. tokens может быть nil.
// Таймауты задаются контекстом каждого вызова, а не http.Client.
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		logger:  logger,
		httpClient: &http.Client{
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// BaseURL returns the server base URL without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthURL is the URL probed by the network monitor.
func (c *Client) HealthURL() string {
	return c.baseURL + "/health"
}

// HTTPClient exposes the underlying client so probes share its transport.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// LoadTable fetches the server snapshot of table.
func (c *Client) LoadTable(ctx context.Context, table, userID string) ([]models.Record, error) {
	body, err := c.doRequest(ctx, http.MethodGet, loadPath(table, userID), nil)
	if err != nil {
		return nil, fmt.Errorf("load %s failed: %w", table, err)
	}

	resp, err := api.DecodeLoadResponse(table, body)
	if err != nil {
		return nil, fmt.Errorf("load %s failed: %w", table, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("load %s failed: %w", table, unsuccessful(resp.Message))
	}

	return resp.Records, nil
}

// SyncTable pushes the full snapshot of table. A response without success=true is
// returned as ErrUnsuccessful.
func (c *Client) SyncTable(ctx context.Context, table, userID string, records []models.Record) (*api.SyncResponse, error) {
	req := api.SyncRequest{Table: table, UserID: userID, Records: records}

	resp, err := c.postSync(ctx, "/"+table+"-sync.php", req)
	if err != nil {
		return nil, fmt.Errorf("sync %s failed: %w", table, err)
	}
	return resp, nil
}

// LoadGlobal fetches the snapshot of all tables.
func (c *Client) LoadGlobal(ctx context.Context, userID string) (*models.GlobalData, error) {
	body, err := c.doRequest(ctx, http.MethodGet, loadPath(string(models.TableGlobal), userID), nil)
	if err != nil {
		return nil, fmt.Errorf("global load failed: %w", err)
	}

	var resp api.GlobalLoadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("global load failed: %w", err)
	}

	return &resp.Data, nil
}

// SyncGlobal pushes the snapshot of all tables.
func (c *Client) SyncGlobal(ctx context.Context, userID string, data models.GlobalData) (*api.SyncResponse, error) {
	req := api.GlobalSyncRequest{UserID: userID, Data: data}

	resp, err := c.postSync(ctx, "/global-sync.php", req)
	if err != nil {
		return nil, fmt.Errorf("global sync failed: %w", err)
	}
	return resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.LoginResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/auth.php", req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	var resp api.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	if !resp.Success || resp.Token == "" {
		return nil, fmt.Errorf("login request failed: %w", unsuccessful(resp.Message))
	}

	return &resp, nil
}

func (c *Client) postSync(ctx context.Context, path string, payload any) (*api.SyncResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var resp api.SyncResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !resp.Success {
		return &resp, unsuccessful(resp.Message)
	}

	return &resp, nil
}

func loadPath(table, userID string) string {
	q := url.Values{}
	q.Set("userId", userID)
	return "/" + table + "-load.php?" + q.Encode()
}

// doRequest выполняет HTTP запрос и возвращает тело ответа, которое гарантированно
// является валидным JSON
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("X-Requested-With", "complisync")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("HTTP request completed",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			statusErr.Message = errResp.Message
			if statusErr.Message == "" {
				statusErr.Message = errResp.Error
			}
		}
		return nil, statusErr
	}

	if !json.Valid(respBody) {
		c.logger.Error("Server returned non-JSON response",
			"method", method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"body", truncate(respBody, maxLoggedBody))
		return nil, ErrMalformedResponse
	}

	return respBody, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
