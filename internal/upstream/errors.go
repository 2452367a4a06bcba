package upstream

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable — предохранитель разомкнут или лимит исчерпан, вызов не делался.
var ErrUnavailable = errors.New("upstream: auth api unavailable")

// TransportError — сетевой сбой между консолью и бэкендом авторизации.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream: %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ThrottleError — бэкенд ответил 429, повтор не раньше RetryAfter.
type ThrottleError struct {
	RetryAfter time.Duration
	Response   *Response
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("throttled: retry after %v", e.RetryAfter)
}

// serverError — 5xx от бэкенда. Считается отказом для предохранителя,
// но тело ответа всё равно отдаётся вызывающему.
type serverError struct {
	Response *Response
}

func (e *serverError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Response.Status)
}
