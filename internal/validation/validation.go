// Package validation holds the naming and credential rules shared by the sync client
// and the reference server.
package validation

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalid оборачивает любую ошибку проверки, обработчики отвечают на нее 400
var ErrInvalid = errors.New("invalid value")

var (
	// TableNamePattern допустимое имя таблицы: оно попадает в путь запроса ({T}-load.php)
	// и в ключи локального хранилища
	TableNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

	// LoginPattern допустимый логин учетной записи сервера, в том числе в виде e-mail
	LoginPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._@-]{2,63}$`)
)

const (
	// MinPasswordLen минимальная длина пароля при создании учетной записи
	MinPasswordLen = 10
	// MaxPasswordLen предел bcrypt: байты сверх 72 не участвуют в хеше
	MaxPasswordLen = 72
)

func invalid(field, format string, a ...any) error {
	return fmt.Errorf("%w %s: %s", ErrInvalid, field, fmt.Sprintf(format, a...))
}

// ValidateTableName проверяет имя таблицы
func ValidateTableName(table string) error {
	switch {
	case table == "":
		return invalid("table name", "cannot be empty")
	case !TableNamePattern.MatchString(table):
		return invalid("table name", "%q must start with a letter and contain only letters, digits and '_' (max 64)", table)
	}
	return nil
}

// ValidateUsername проверяет логин: 3-64 символа, буквы, цифры и ". _ @ -",
// первый символ буква или цифра
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return invalid("username", "cannot be empty")
	case !LoginPattern.MatchString(username):
		return invalid("username", "%q must be 3-64 letters, digits or '._@-' and start with a letter or digit", username)
	}
	return nil
}

// ValidatePassword проверяет пароль новой учетной записи. При входе длина не
// проверяется, сервер просто сравнивает хеш.
func ValidatePassword(password string) error {
	switch {
	case password == "":
		return invalid("password", "cannot be empty")
	case len(password) < MinPasswordLen:
		return invalid("password", "must be at least %d characters long", MinPasswordLen)
	case len(password) > MaxPasswordLen:
		return invalid("password", "must not exceed %d bytes", MaxPasswordLen)
	}
	return nil
}
