package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/complisync/internal/client/iocli"
	"github.com/iudanet/complisync/internal/models"
	"github.com/iudanet/complisync/internal/server"
	"github.com/iudanet/complisync/internal/server/handlers"
	"github.com/iudanet/complisync/internal/server/storage/sqlite"
)

const testPassword = "a-long-enough-password"

// testServer сервер с переключателем недоступности: при down отвечает 503
type testServer struct {
	*httptest.Server
	store *sqlite.Storage
	down  atomic.Bool
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	user, err := handlers.NewUser("alice", testPassword)
	require.NoError(t, err)
	require.NoError(t, store.CreateUser(ctx, user))

	srv := server.New(server.Config{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Version:   "test",
		RateLimit: 1000,
		Burst:     1000,
		JWT: handlers.JWTConfig{
			Secret:         []byte("0123456789abcdef0123456789abcdef"),
			AccessTokenTTL: time.Hour,
		},
	}, store)
	t.Cleanup(srv.Close)

	ts := &testServer{store: store}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ts.down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		srv.Handler().ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) userID(t *testing.T) string {
	t.Helper()
	user, err := ts.store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	return user.ID
}

// client одна установка клиента со своей базой
type client struct {
	server string
	db     string
}

func newClient(t *testing.T, ts *testServer) *client {
	t.Helper()
	return &client{server: ts.URL, db: filepath.Join(t.TempDir(), "client.db")}
}

// run выполняет команду так же, как main: ошибка команды плюс ошибка закрытия
func (c *client) run(ctx context.Context, stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	app := NewApp(iocli.New(strings.NewReader(stdin), &out), io.Discard, BuildInfo{Version: "test", Commit: "abc", Date: "today"})
	app.getenv = func(string) string { return "" }

	root := app.NewRootCommand()
	root.SetArgs(append([]string{"--server", c.server, "--db", c.db, "--log-level", "error"}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), errors.Join(err, app.Close())
}

func (c *client) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := c.run(context.Background(), "", args...)
	require.NoError(t, err, out)
	return out
}

func (c *client) login(t *testing.T) {
	t.Helper()
	out, err := c.run(context.Background(), testPassword+"\n", "login", "-u", "alice")
	require.NoError(t, err, out)
	require.Contains(t, out, "Login successful")
}

func writeRecords(t *testing.T, records []models.Record) string {
	t.Helper()
	data, err := json.Marshal(records)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestVersion(t *testing.T) {
	c := &client{server: "http://localhost:1", db: filepath.Join(t.TempDir(), "unused.db")}

	out := c.mustRun(t, "version")
	assert.Contains(t, out, "complisync version test")
	assert.Contains(t, out, "commit: abc")
	assert.NoFileExists(t, c.db)
}

func TestLoginStatusLogout(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	c.login(t)

	out := c.mustRun(t, "status")
	assert.Contains(t, out, "Network:  online")
	assert.Contains(t, out, "alice ("+ts.userID(t)+")")

	out = c.mustRun(t, "logout")
	assert.Contains(t, out, "Logged out")

	out = c.mustRun(t, "status", "--no-probe")
	assert.Contains(t, out, "not logged in")
	assert.Contains(t, out, "not checked")
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	_, err := c.run(context.Background(), "wrong-password-123\n", "login", "-u", "alice")
	require.Error(t, err)

	_, err = c.run(context.Background(), "", "sync")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestPushThenLoadOnAnotherDevice(t *testing.T) {
	ts := newTestServer(t)
	laptop := newClient(t, ts)
	phone := newClient(t, ts)
	laptop.login(t)
	phone.login(t)

	file := writeRecords(t, []models.Record{
		{"id": "d1", "title": "Politique qualité"},
		{"id": "d2", "title": "Plan d'audit"},
	})
	out := laptop.mustRun(t, "push", "documents", file)
	assert.Contains(t, out, "✓ documents synchronized (2 records)")

	stored, err := ts.store.GetSnapshot(context.Background(), ts.userID(t), "documents")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	out = phone.mustRun(t, "load", "documents")
	var records []models.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "d1", records[0]["id"])

	// загруженная копия хранится локально и видна в статусе
	out = phone.mustRun(t, "status", "--no-probe", "--json")
	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	for _, table := range report.Tables {
		if table.Name == "documents" {
			assert.Equal(t, 2, table.Records)
			assert.False(t, table.Pending)
			assert.NotNil(t, table.LastSynced)
		}
	}
}

func TestPushOfflineThenSync(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)
	c.login(t)

	ts.down.Store(true)
	file := writeRecords(t, []models.Record{{"id": "m1", "nom": "Durand"}})
	out := c.mustRun(t, "push", "membres", file)
	assert.Contains(t, out, "left pending")

	out = c.mustRun(t, "sync")
	assert.Contains(t, out, "not reachable, 1 table(s) left pending")

	ts.down.Store(false)
	out = c.mustRun(t, "sync")
	assert.Contains(t, out, "✓ membres")

	stored, err := ts.store.GetSnapshot(context.Background(), ts.userID(t), "membres")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Durand", stored[0]["nom"])

	out = c.mustRun(t, "sync")
	assert.Contains(t, out, "No pending tables")
}

func TestPushThroughQueue(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)
	c.login(t)

	file := writeRecords(t, []models.Record{{"id": "r1"}})
	out := c.mustRun(t, "push", "--queue", "raci", file)
	assert.Contains(t, out, "synchronized through the queue")

	out = c.mustRun(t, "queue", "status")
	assert.Contains(t, out, "0 operation(s)")

	out = c.mustRun(t, "queue", "clear")
	assert.Contains(t, out, "Removed 0 failed operation(s)")
}

func TestGlobalPushAndLoad(t *testing.T) {
	ts := newTestServer(t)
	laptop := newClient(t, ts)
	phone := newClient(t, ts)
	laptop.login(t)
	phone.login(t)

	laptop.mustRun(t, "push", "exigences", writeRecords(t, []models.Record{{"id": "e1"}}))
	out := laptop.mustRun(t, "push", "global")
	assert.Contains(t, out, "global snapshot synchronized")

	out = phone.mustRun(t, "load", "global")
	var data models.GlobalData
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Len(t, data.Exigences, 1)

	_, err := laptop.run(context.Background(), "", "push", "global", "file.json")
	assert.Error(t, err)
}

func TestProbe(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	assert.Contains(t, c.mustRun(t, "probe"), "is online")
	ts.down.Store(true)
	assert.Contains(t, c.mustRun(t, "probe"), "is offline")
}

func TestInvalidTableName(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t, ts)

	_, err := c.run(context.Background(), "", "load", "../etc")
	assert.Error(t, err)
}

func TestWatch_PushesDroppedFiles(t *testing.T) {
	t.Setenv("COMPLISYNC_SYNC_DEBOUNCE", "20ms")
	t.Setenv("COMPLISYNC_SYNC_FILE_DEBOUNCE", "20ms")

	ts := newTestServer(t)
	c := newClient(t, ts)
	c.login(t)
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out string
	go func() {
		var err error
		out, err = c.run(ctx, "", "watch", "--watch-dir", dir, "--trace", "documents")
		done <- err
	}()

	data, err := json.Marshal([]models.Record{{"id": "w1", "title": "Depuis le dossier"}})
	require.NoError(t, err)

	userID := ts.userID(t)
	// файл пишется повторно, пока мост не начнет наблюдение
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "documents.json"), data, 0o600)
		stored, err := ts.store.GetSnapshot(context.Background(), userID, "documents")
		return err == nil && len(stored) == 1
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, out, "Watching "+dir)
}

func TestReadPassword_Sources(t *testing.T) {
	t.Run("environment first", func(t *testing.T) {
		app := NewApp(&iocli.IOMock{}, io.Discard, BuildInfo{})
		app.getenv = func(key string) string {
			if key == PasswordEnv {
				return "from-env"
			}
			return ""
		}
		app.pwFile = "/does/not/exist"

		got, err := app.readPassword()
		require.NoError(t, err)
		assert.Equal(t, "from-env", got)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pw")
		require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))

		app := NewApp(&iocli.IOMock{}, io.Discard, BuildInfo{})
		app.getenv = func(string) string { return "" }
		app.pwFile = path

		got, err := app.readPassword()
		require.NoError(t, err)
		assert.Equal(t, "from-file", got)
	})

	t.Run("prompt", func(t *testing.T) {
		mock := &iocli.IOMock{
			ReadPasswordFunc: func(prompt string) (string, error) {
				return "from-prompt", nil
			},
		}
		app := NewApp(mock, io.Discard, BuildInfo{})
		app.getenv = func(string) string { return "" }

		got, err := app.readPassword()
		require.NoError(t, err)
		assert.Equal(t, "from-prompt", got)
		require.Len(t, mock.ReadPasswordCalls(), 1)
		assert.Equal(t, "Password: ", mock.ReadPasswordCalls()[0].Prompt)
	})

	t.Run("empty prompt", func(t *testing.T) {
		mock := &iocli.IOMock{
			ReadPasswordFunc: func(prompt string) (string, error) { return "", nil },
		}
		app := NewApp(mock, io.Discard, BuildInfo{})
		app.getenv = func(string) string { return "" }

		_, err := app.readPassword()
		assert.Error(t, err)
	})
}
