package httpx

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const MaxBodyBytes = 1 << 20 // 1MB

// Binder разбирает и валидирует JSON тела запросов /api.
type Binder struct {
	validator *validator.Validate
	logger    *zap.Logger
}

func NewBinder(l *zap.Logger) *Binder {
	return &Binder{
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    l,
	}
}

// Validate проверяет структуру по тегам validate.
func (b *Binder) Validate(v any) error {
	return b.validator.Struct(v)
}

// Bind декодирует тело в v и валидирует его. При ошибке ответ уже записан, вернётся false.
func (b *Binder) Bind(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		WriteError(w, http.StatusUnsupportedMediaType, ErrorResponse[any]{
			Code:    ErrUnsupportedMedia,
			Message: "Content-Type must be application/json",
		})
		return false
	}

	// Лишние поля не ошибка: дальше уходят только поля структуры
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		b.logger.Warn("failed to decode request body", zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, http.StatusBadRequest, ErrorResponse[any]{
			Code:    ErrInvalidJSON,
			Message: "invalid request body",
		})
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF { // check if there's any trailing data
		b.logger.Warn("trailing data after JSON body", zap.String("path", r.URL.Path))
		WriteError(w, http.StatusBadRequest, ErrorResponse[any]{
			Code:    ErrInvalidJSON,
			Message: "request body must contain a single JSON object",
		})
		return false
	}

	if err := b.validator.Struct(v); err != nil {
		b.logger.Warn("request validation failed", zap.String("path", r.URL.Path), zap.Error(err))
		WriteError(w, http.StatusUnprocessableEntity, ErrorResponse[[]FieldError]{
			Code:    ErrValidationFailed,
			Message: "validation failed",
			Details: ValidationDetails(err),
		})
		return false
	}
	return true
}
