package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimestampValue — обёртка extended-JSON от бэкенда авторизации:
// { "$date": { "$numberLong": "<epoch-ms>" } }.
// Строка хранится как есть, разбор в число делает timefmt в момент отображения.
type TimestampValue struct {
	NumberLong string
}

// NewTimestamp собирает значение из epoch-миллисекунд.
func NewTimestamp(ms int64) TimestampValue {
	return TimestampValue{NumberLong: strconv.FormatInt(ms, 10)}
}

type extDate struct {
	Date json.RawMessage `json:"$date"`
}

type extNumberLong struct {
	NumberLong string `json:"$numberLong"`
}

// MarshalJSON всегда пишет каноническую форму.
func (t TimestampValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]extNumberLong{"$date": {NumberLong: t.NumberLong}})
}

// UnmarshalJSON принимает каноническую форму и relaxed-варианты,
// которые отдаёт serde-bson: { "$date": 1700000000000 } и { "$date": "2023-11-14T22:13:20Z" }.
// Нераспознанное значение сохраняется текстом: timefmt покажет заглушку в одной ячейке,
// а декодирование всего списка не падает.
func (t *TimestampValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = TimestampValue{}
		return nil
	}
	if data[0] != '{' {
		*t = TimestampValue{NumberLong: dateText(data)}
		return nil
	}

	var wrapper extDate
	if err := json.Unmarshal(data, &wrapper); err != nil || len(bytes.TrimSpace(wrapper.Date)) == 0 {
		*t = TimestampValue{NumberLong: string(data)}
		return nil
	}

	raw := bytes.TrimSpace(wrapper.Date)
	if raw[0] != '{' {
		*t = TimestampValue{NumberLong: dateText(raw)}
		return nil
	}

	var nl struct {
		NumberLong json.RawMessage `json:"$numberLong"`
	}
	if err := json.Unmarshal(raw, &nl); err != nil || len(nl.NumberLong) == 0 {
		*t = TimestampValue{NumberLong: string(raw)}
		return nil
	}
	*t = TimestampValue{NumberLong: tokenText(nl.NumberLong)}
	return nil
}

// tokenText — строка без кавычек или JSON-токен как есть.
func tokenText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// dateText дополнительно переводит RFC 3339 в epoch-миллисекунды.
func dateText(raw json.RawMessage) string {
	s := tokenText(raw)
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewTimestamp(int64(primitive.NewDateTimeFromTime(parsed))).NumberLong
	}
	return s
}
