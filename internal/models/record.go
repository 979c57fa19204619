package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// FieldID и FieldDateModification это служебные поля записи, которые понимает движок синхронизации.
const (
	FieldID               = "id"
	FieldDateModification = "date_modification"
)

// Record представляет одну запись таблицы (документ, exigence, membre ...).
// Кроме id и date_modification поля произвольные и движком не интерпретируются.
type Record map[string]any

// modificationLayouts форматы date_modification, которые встречаются в данных сервера
var modificationLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ID returns the record id as a string.
// JSON numbers are formatted without exponent so that 12 and "12" are the same id.
func (r Record) ID() (string, bool) {
	raw, ok := r[FieldID]
	if !ok || raw == nil {
		return "", false
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return fmt.Sprint(v), true
	}
}

// HasID reports whether the record carries a usable id.
func (r Record) HasID() bool {
	_, ok := r.ID()
	return ok
}

// ModifiedAt parses date_modification.
// Returns false when the field is missing or not comparable.
func (r Record) ModifiedAt() (time.Time, bool) {
	raw, ok := r[FieldDateModification]
	if !ok || raw == nil {
		return time.Time{}, false
	}

	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range modificationLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		// unix millis в виде строки
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms), true
		}
		return time.Time{}, false
	case float64:
		return time.UnixMilli(int64(v)), true
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return time.UnixMilli(ms), true
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(f)), true
	case int64:
		return time.UnixMilli(v), true
	case time.Time:
		return v, true
	default:
		return time.Time{}, false
	}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = cloneValue(vv)
		}
		return m
	case Record:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, vv := range t {
			s[i] = cloneValue(vv)
		}
		return s
	default:
		return v
	}
}

// CloneRecords deep-copies a table snapshot.
func CloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// DecodeRecords parses a JSON array of records. Numbers are kept as json.Number, so
// integer ids beyond 2^53 survive a save and load unchanged.
func DecodeRecords(data []byte) ([]Record, error) {
	var records []Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after records")
	}
	return records, nil
}

// Fingerprint returns a content hash of a table snapshot.
// Two snapshots with the same records in the same order have the same fingerprint
// regardless of map iteration order. Values are hashed in their JSON form, so a
// snapshot and its stored copy (int vs json.Number) hash the same.
func Fingerprint(records []Record) (uint64, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("failed to hash records: %w", err)
	}
	canonical, err := DecodeRecords(data)
	if err != nil {
		return 0, fmt.Errorf("failed to hash records: %w", err)
	}

	// hashstructure не знает про именованный тип Record, приводим к базовому
	plain := make([]map[string]any, len(canonical))
	for i, r := range canonical {
		plain[i] = map[string]any(r)
	}
	hash, err := hashstructure.Hash(plain, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to hash records: %w", err)
	}
	return hash, nil
}
