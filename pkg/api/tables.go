package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/complisync/internal/models"
)

// Synonym keys under which a load response may carry its records, after the table name.
const (
	KeyRecords = "records"
	KeyData    = "data"
)

// ErrNoRecords означает, что в ответе нет ни одного из ключей с записями
var ErrNoRecords = errors.New("response carries no records")

// LoadResponse is the answer of {T}-load.php. The records are sent under the table
// name itself, "records" or "data", checked in that order.
type LoadResponse struct {
	Message string
	Records []models.Record
	Success bool
}

type loadEnvelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

// DecodeLoadResponse parses a load response for table. A missing "success" field is
// read as success when records are present.
func DecodeLoadResponse(table string, body []byte) (*LoadResponse, error) {
	var env loadEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode load response: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode load response: %w", err)
	}

	resp := &LoadResponse{
		Success: env.Success == nil || *env.Success,
		Message: env.Message,
	}

	for _, key := range []string{table, KeyRecords, KeyData} {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			continue
		}
		records, err := models.DecodeRecords(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %q records: %w", key, err)
		}
		resp.Records = records
		if resp.Records == nil {
			resp.Records = []models.Record{}
		}
		return resp, nil
	}

	if !resp.Success {
		return resp, nil
	}
	return nil, ErrNoRecords
}

// EncodeLoadResponse is the server side of DecodeLoadResponse: records go under the
// table name.
func EncodeLoadResponse(table string, records []models.Record) ([]byte, error) {
	if records == nil {
		records = []models.Record{}
	}
	return json.Marshal(map[string]any{
		"success": true,
		table:     records,
	})
}

// SyncRequest is the body of {T}-sync.php: {"userId": ..., "<table>": [...]}.
type SyncRequest struct {
	Table   string
	UserID  string
	Records []models.Record
}

// MarshalJSON puts the records under the table name.
func (r SyncRequest) MarshalJSON() ([]byte, error) {
	records := r.Records
	if records == nil {
		records = []models.Record{}
	}
	return json.Marshal(map[string]any{
		"userId": r.UserID,
		r.Table:  records,
	})
}

// DecodeSyncRequest parses a sync body for table. The records are looked up under the
// table name and then under the same synonyms as load responses.
func DecodeSyncRequest(table string, body []byte) (*SyncRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode sync request: %w", err)
	}

	req := &SyncRequest{Table: table}
	if raw, ok := fields["userId"]; ok {
		if err := json.Unmarshal(raw, &req.UserID); err != nil {
			return nil, fmt.Errorf("failed to decode userId: %w", err)
		}
	}

	for _, key := range []string{table, KeyRecords, KeyData} {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			continue
		}
		records, err := models.DecodeRecords(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %q records: %w", key, err)
		}
		req.Records = records
		return req, nil
	}

	return nil, ErrNoRecords
}

// SyncResponse is the answer of {T}-sync.php and global-sync.php.
type SyncResponse struct {
	Message string `json:"message,omitempty"`
	Count   int    `json:"count,omitempty"`
	Success bool   `json:"success"`
}

// GlobalLoadResponse is the answer of global-load.php.
type GlobalLoadResponse struct {
	Data    models.GlobalData `json:"data"`
	Success bool              `json:"success"`
}

// GlobalSyncRequest is the body of global-sync.php.
type GlobalSyncRequest struct {
	UserID string            `json:"userId"`
	Data   models.GlobalData `json:"data"`
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
