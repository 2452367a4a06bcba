// Package timefmt превращает extended-JSON метки времени бэкенда в строки для таблиц консоли.
package timefmt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xela07ax/authconsole/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// Layout — длинный формат даты и времени ("Nov 14, 2023 - 10:13 PM").
	Layout = "Jan 2, 2006 - 3:04 PM"

	// Fallback показывается вместо значения, которое не удалось разобрать.
	Fallback = "—"

	// SessionLifetimeDays — срок жизни сессии от created_at, которым бэкенд считает истечение.
	SessionLifetimeDays = 45

	dayMillis = int64(24 * time.Hour / time.Millisecond)
)

var ErrNegativeOffset = errors.New("timefmt: offset days must be non-negative")

// ParseError — numberLong не является десятичным целым.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("timefmt: cannot parse %q as epoch milliseconds: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type Formatter struct {
	loc *time.Location
}

// New возвращает форматтер в заданной зоне. nil означает локальную зону процесса.
func New(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{loc: loc}
}

// Millis разбирает numberLong в epoch-миллисекунды.
func Millis(ts domain.TimestampValue) (int64, error) {
	ms, err := strconv.ParseInt(ts.NumberLong, 10, 64)
	if err != nil {
		return 0, &ParseError{Value: ts.NumberLong, Err: err}
	}
	return ms, nil
}

// Time возвращает момент времени со сдвигом offsetDays суток.
func (f *Formatter) Time(ts domain.TimestampValue, offsetDays int) (time.Time, error) {
	if offsetDays < 0 {
		return time.Time{}, ErrNegativeOffset
	}
	ms, err := Millis(ts)
	if err != nil {
		return time.Time{}, err
	}
	ms += int64(offsetDays) * dayMillis
	return primitive.DateTime(ms).Time().In(f.loc), nil
}

// Normalize форматирует метку времени. Ноль — это эпоха, а не "нет значения".
func (f *Formatter) Normalize(ts domain.TimestampValue, offsetDays int) (string, error) {
	t, err := f.Time(ts, offsetDays)
	if err != nil {
		return "", err
	}
	return t.Format(Layout), nil
}

// Display никогда не падает: на ошибке разбора отдаёт Fallback.
func (f *Formatter) Display(ts domain.TimestampValue, offsetDays int) string {
	s, err := f.Normalize(ts, offsetDays)
	if err != nil {
		return Fallback
	}
	return s
}

// Expiry — момент истечения сессии: created_at + lifetimeDays.
func (f *Formatter) Expiry(createdAt domain.TimestampValue, lifetimeDays int) string {
	return f.Display(createdAt, lifetimeDays)
}
