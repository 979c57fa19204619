package api

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse означает, что сервер вернул не JSON (например, HTML страницу ошибки)
	ErrMalformedResponse = errors.New("malformed server response")

	// ErrUnsuccessful означает ответ 2xx, в котором success != true
	ErrUnsuccessful = errors.New("server reported failure")
)

// StatusError is a non-2xx HTTP answer.
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// unsuccessful оборачивает ErrUnsuccessful сообщением сервера
func unsuccessful(message string) error {
	if message == "" {
		return ErrUnsuccessful
	}
	return fmt.Errorf("%w: %s", ErrUnsuccessful, message)
}
