package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/internal/server/storage"
	"github.com/iudanet/complisync/internal/validation"
	"github.com/iudanet/complisync/pkg/api"
)

// Суффиксы эндпоинтов таблиц: /documents-load.php, /documents-sync.php
const (
	loadSuffix = "-load.php"
	syncSuffix = "-sync.php"
)

// maxSyncBody ограничивает размер тела sync запроса
const maxSyncBody = 32 << 20

// TableHandler serves the per-table load/sync endpoints and their global variants.
// Every sync replaces the stored snapshot of the (user, table) pair.
type TableHandler struct {
	logger    *slog.Logger
	snapshots storage.SnapshotStorage
}

// NewTableHandler создает handler таблиц
func NewTableHandler(logger *slog.Logger, snapshots storage.SnapshotStorage) *TableHandler {
	return &TableHandler{
		logger:    logger,
		snapshots: snapshots,
	}
}

// Load обрабатывает GET /{T}-load.php?userId=
func (h *TableHandler) Load(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	table, ok := tableFromEndpoint(r.PathValue("endpoint"), loadSuffix)
	if !ok {
		http.NotFound(w, r)
		return
	}

	userID, ok := h.authorize(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}

	records, err := h.snapshots.GetSnapshot(ctx, userID, table)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load snapshot", slog.String("table", table), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	body, err := api.EncodeLoadResponse(table, records)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode load response", slog.String("table", table), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.DebugContext(ctx, "table loaded", slog.String("table", table), slog.Int("count", len(records)))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Sync обрабатывает POST /{T}-sync.php с телом {userId, [T]: records}
func (h *TableHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	table, ok := tableFromEndpoint(r.PathValue("endpoint"), syncSuffix)
	if !ok {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSyncBody))
	if err != nil {
		sendError(h.logger, w, "failed to read request body", http.StatusBadRequest)
		return
	}

	req, err := api.DecodeSyncRequest(table, body)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid sync request", slog.String("table", table), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	userID, ok := h.authorize(w, r, req.UserID)
	if !ok {
		return
	}

	if err := h.snapshots.SaveSnapshot(ctx, userID, table, req.Records); err != nil {
		h.logger.ErrorContext(ctx, "failed to save snapshot", slog.String("table", table), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "table synced",
		slog.String("table", table),
		slog.String("user_id", userID),
		slog.Int("count", len(req.Records)))

	sendJSON(h.logger, w, api.SyncResponse{
		Success: true,
		Message: fmt.Sprintf("%d records saved", len(req.Records)),
		Count:   len(req.Records),
	}, http.StatusOK)
}

// LoadGlobal обрабатывает GET /global-load.php?userId=
func (h *TableHandler) LoadGlobal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.authorize(w, r, r.URL.Query().Get("userId"))
	if !ok {
		return
	}

	stored, err := h.snapshots.ListTables(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tables", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	present := make(map[string]bool, len(stored))
	for _, name := range stored {
		present[name] = true
	}

	var data models.GlobalData
	for _, table := range models.GlobalTables() {
		// отсутствующие таблицы не попадают в ответ, клиент оставит свои
		if !present[table.String()] {
			continue
		}
		records, err := h.snapshots.GetSnapshot(ctx, userID, table.String())
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to load snapshot", slog.String("table", table.String()), slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		data.SetTable(table, records)
	}

	sendJSON(h.logger, w, api.GlobalLoadResponse{Success: true, Data: data}, http.StatusOK)
}

// SyncGlobal обрабатывает POST /global-sync.php с телом {userId, data}
func (h *TableHandler) SyncGlobal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.GlobalSyncRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSyncBody))
	if err != nil {
		sendError(h.logger, w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if err := decodeJSON(body, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid global sync request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := h.authorize(w, r, req.UserID)
	if !ok {
		return
	}

	total := 0
	for _, table := range models.GlobalTables() {
		records := req.Data.Table(table)
		if records == nil {
			continue
		}
		if err := h.snapshots.SaveSnapshot(ctx, userID, table.String(), records); err != nil {
			h.logger.ErrorContext(ctx, "failed to save snapshot", slog.String("table", table.String()), slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		total += len(records)
	}

	h.logger.InfoContext(ctx, "global snapshot synced", slog.String("user_id", userID), slog.Int("count", total))

	sendJSON(h.logger, w, api.SyncResponse{
		Success: true,
		Message: fmt.Sprintf("%d records saved", total),
		Count:   total,
	}, http.StatusOK)
}

// authorize сверяет userId из запроса с пользователем токена.
// Пустой userId означает пользователя токена.
func (h *TableHandler) authorize(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "user id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}

	if requested != "" && requested != userID {
		h.logger.WarnContext(r.Context(), "userId does not match token subject",
			slog.String("user_id", userID),
			slog.String("requested", requested))
		sendError(h.logger, w, "userId does not match the authenticated user", http.StatusForbidden)
		return "", false
	}

	return userID, true
}

func tableFromEndpoint(endpoint, suffix string) (string, bool) {
	table, ok := strings.CutSuffix(endpoint, suffix)
	if !ok || validation.ValidateTableName(table) != nil {
		return "", false
	}
	// global обслуживается отдельными эндпоинтами
	if table == models.TableGlobal.String() {
		return "", false
	}
	return table, true
}
