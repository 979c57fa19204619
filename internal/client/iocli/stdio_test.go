package iocli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Проверяем что NewStdio возвращает валидный объект
func TestNewStdio(t *testing.T) {
	stdio := NewStdio()
	assert.NotNil(t, stdio)
}

func TestPrintlnAndPrintf(t *testing.T) {
	var out bytes.Buffer
	stdio := New(strings.NewReader(""), &out)

	stdio.Println("hello", "world")
	stdio.Printf("test %d %s", 1, "abc")
	_, err := stdio.Write([]byte("!"))
	require.NoError(t, err)

	assert.Equal(t, "hello world\ntest 1 abc!", out.String())
}

func TestReadInput(t *testing.T) {
	var out bytes.Buffer
	stdio := New(strings.NewReader("  user input \nsecond\n"), &out)

	first, err := stdio.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "user input", first)

	second, err := stdio.ReadInput("Again: ")
	require.NoError(t, err)
	assert.Equal(t, "second", second)

	assert.Equal(t, "Prompt: Again: ", out.String())

	_, err = stdio.ReadInput("Empty: ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadInput_LastLineWithoutNewline(t *testing.T) {
	stdio := New(strings.NewReader("alice"), io.Discard)

	got, err := stdio.ReadInput("Username: ")
	require.NoError(t, err)
	assert.Equal(t, "alice", got)
}

// Не терминал: пароль читается обычной строкой
func TestReadPassword_NotTerminal(t *testing.T) {
	var out bytes.Buffer
	stdio := New(strings.NewReader("s3cret-password\n"), &out)

	got, err := stdio.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret-password", got)
	assert.Equal(t, "Password: ", out.String())
}
