package boltdb

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/complisync/internal/client/storage"
)

func TestStorage_PutGetTable(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	_, err := store.GetTable(ctx, "documents_u1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	before := time.Now().Add(-time.Second)
	records := json.RawMessage(`[{"id":"1","title":"a"}]`)
	require.NoError(t, store.PutTable(ctx, "documents_u1", records))

	entry, err := store.GetTable(ctx, "documents_u1")
	require.NoError(t, err)
	assert.JSONEq(t, string(records), string(entry.Records))
	assert.True(t, entry.UpdatedAt.After(before))

	// Перезапись
	require.NoError(t, store.PutTable(ctx, "documents_u1", json.RawMessage(`[]`)))
	entry, err = store.GetTable(ctx, "documents_u1")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(entry.Records))
}

func TestStorage_GetTableBareArray(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	// Старый формат без обертки
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTables).Put([]byte("documentsData_u1"), []byte(` [{"id":"7"}]`))
	})
	require.NoError(t, err)

	entry, err := store.GetTable(ctx, "documentsData_u1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"7"}]`, string(entry.Records))
	assert.True(t, entry.UpdatedAt.IsZero())
}

func TestStorage_GetTableCorrupted(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTables).Put([]byte("raci_u1"), []byte(`{not json`))
	})
	require.NoError(t, err)

	_, err = store.GetTable(ctx, "raci_u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestStorage_DeleteTableAndKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStorage(t)

	for _, key := range []string{"documents_u1", "documents_u2", "membres_u1"} {
		require.NoError(t, store.PutTable(ctx, key, json.RawMessage(`[]`)))
	}

	keys, err := store.TableKeys(ctx, "documents_")
	require.NoError(t, err)
	assert.Equal(t, []string{"documents_u1", "documents_u2"}, keys)

	all, err := store.TableKeys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, store.DeleteTable(ctx, "documents_u1"))
	require.NoError(t, store.DeleteTable(ctx, "missing"))

	keys, err = store.TableKeys(ctx, "documents_")
	require.NoError(t, err)
	assert.Equal(t, []string{"documents_u2"}, keys)
}
