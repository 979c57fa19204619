package models

import (
	"encoding/json"
	"time"
)

// SyncState состояние синхронизации одной таблицы.
// Создается лениво при первом обращении и живет до конца процесса.
type SyncState struct {
	LastSynced *time.Time `json:"last_synced,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	IsSyncing  bool       `json:"is_syncing"`
	SyncFailed bool       `json:"sync_failed"`
}

// GlobalState aggregates the per-table states.
type GlobalState struct {
	LastSynced *time.Time `json:"last_synced,omitempty"`
	IsSyncing  bool       `json:"is_syncing"`
	SyncFailed bool       `json:"sync_failed"`
}

// OperationStatus статус операции в очереди синхронизации
type OperationStatus string

const (
	OperationPending    OperationStatus = "pending"
	OperationProcessing OperationStatus = "processing"
	OperationCompleted  OperationStatus = "completed"
	OperationFailed     OperationStatus = "failed"
)

// SyncOperation is one durable entry of the sync queue.
type SyncOperation struct {
	Timestamp  time.Time       `json:"timestamp"`
	ID         string          `json:"id"`
	Type       TableKind       `json:"type"`
	UserID     string          `json:"userId"`
	Error      string          `json:"error,omitempty"`
	Status     OperationStatus `json:"status"`
	Data       json.RawMessage `json:"data"`
	RetryCount int             `json:"retryCount"`
}

// QueueStatus snapshot of the queue for display
type QueueStatus struct {
	Total       int  `json:"total"`
	Pending     int  `json:"pending"`
	Processing  int  `json:"processing"`
	Failed      int  `json:"failed"`
	HasFailures bool `json:"hasFailures"`
}

// SyncResult is what SyncData hands back to callers. It never carries an error value:
// failures are reported through Success=false and Message.
type SyncResult struct {
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Message   string     `json:"message"`
	Count     int        `json:"count,omitempty"`
	Success   bool       `json:"success"`
	Queued    bool       `json:"queued,omitempty"`
}

// GlobalData снимок всех таблиц пользователя (global-load.php / global-sync.php)
type GlobalData struct {
	Documents         []Record      `json:"documents,omitempty"`
	Exigences         []Record      `json:"exigences,omitempty"`
	Membres           []Record      `json:"membres,omitempty"`
	PilotageDocuments []Record      `json:"pilotageDocuments,omitempty"`
	Bibliotheque      *Bibliotheque `json:"bibliotheque,omitempty"`
}

// Bibliotheque is the library part of the global snapshot.
type Bibliotheque struct {
	Documents []Record `json:"documents"`
	Groups    []Record `json:"groups"`
}
