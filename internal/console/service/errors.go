package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/xela07ax/authconsole/internal/upstream"
)

var (
	// ErrValidation — форма не прошла проверку, бэкенд не вызывался.
	ErrValidation       = errors.New("validation failed")
	ErrPasswordMismatch = errors.New("new password and confirmation do not match")
)

// UpstreamError — бэкенд ответил не-2xx.
type UpstreamError struct {
	Action   string
	Response *upstream.Response
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: auth api returned %d: %s", e.Action, e.Response.Status, e.Message())
}

// Message — текст ошибки из тела ответа ("message" или "error"), иначе статус.
func (e *UpstreamError) Message() string {
	var text string
	if err := json.Unmarshal(e.Response.Body, &text); err == nil && text != "" {
		return text
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Response.Body, &body); err == nil {
		if msg := strings.TrimSpace(body.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(body.Error); msg != "" {
			return msg
		}
	}
	return http.StatusText(e.Response.Status)
}

// PartialUpdateError — редактирование прервано на шаге Step; шаги из Applied уже применены.
type PartialUpdateError struct {
	Step    string
	Applied []string
	Err     error
}

func (e *PartialUpdateError) Error() string {
	if len(e.Applied) == 0 {
		return fmt.Sprintf("update %s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("update %s failed after %s was saved: %v", e.Step, strings.Join(e.Applied, ", "), e.Err)
}

func (e *PartialUpdateError) Unwrap() error { return e.Err }
