package iocli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio reads from in and writes to out. When in is a terminal, passwords are read
// without echo; otherwise they are read as a plain line (pipes, tests).
type Stdio struct {
	in     *bufio.Reader
	out    io.Writer
	termFD int
}

// NewStdio returns IO bound to the process standard streams.
func NewStdio() IO {
	return New(os.Stdin, os.Stdout)
}

// New creates Stdio over arbitrary streams.
func New(in io.Reader, out io.Writer) *Stdio {
	s := &Stdio{
		in:     bufio.NewReader(in),
		out:    out,
		termFD: -1,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.termFD = int(f.Fd())
	}
	return s
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	return s.readLine()
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)
	if s.termFD < 0 {
		return s.readLine()
	}

	pwBytes, err := term.ReadPassword(s.termFD)
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

// readLine последняя строка без перевода строки тоже считается вводом
func (s *Stdio) readLine() (string, error) {
	input, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
