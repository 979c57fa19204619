package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/complisync/internal/server/storage/sqlite"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateAndAddUser(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "server.db")

	out, err := execute(t, "migrate", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 2")

	pwFile := filepath.Join(dir, "pw")
	require.NoError(t, os.WriteFile(pwFile, []byte("a-long-enough-password\n"), 0o600))

	out, err = execute(t, "adduser", "alice", "--db", db, "--password-file", pwFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Created user alice")

	_, err = execute(t, "adduser", "alice", "--db", db, "--password-file", pwFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	store, err := sqlite.New(context.Background(), db)
	require.NoError(t, err)
	defer store.Close()
	user, err := store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestAddUser_ShortPassword(t *testing.T) {
	dir := t.TempDir()
	pwFile := filepath.Join(dir, "pw")
	require.NoError(t, os.WriteFile(pwFile, []byte("short"), 0o600))

	_, err := execute(t, "adduser", "bob", "--db", filepath.Join(dir, "server.db"), "--password-file", pwFile)
	assert.Error(t, err)
}

func TestServe_RequiresSecret(t *testing.T) {
	_, err := execute(t, "serve", "--db", filepath.Join(t.TempDir(), "server.db"), "--jwt-secret", "too-short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "complisync-server version dev")
}
