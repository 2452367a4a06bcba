// Package upstream — клиент API сервиса авторизации. Каждый вызов несёт общий секрет в x-api-key.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xela07ax/authconsole/internal/infra"
	"go.uber.org/zap"
)

const (
	APIKeyHeader = "x-api-key"

	maxResponseBytes = 10 << 20
)

// Call — один вызов бэкенда. Body сериализуется в JSON, nil означает пустое тело.
type Call struct {
	Route Route
	Body  any
}

// Response — статус и JSON-тело бэкенда без изменений.
type Response struct {
	Status     int
	Body       json.RawMessage
	RetryAfter time.Duration
}

// OK — ответ 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Doer — то, что умеет выполнить Call. Реализуют Client и ReliabilityWrapper.
type Doer interface {
	Do(ctx context.Context, call Call) (*Response, error)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient создаёт клиента. Пустые base_url и api_key отсекает infra.Config.Validate при старте.
func NewClient(cfg infra.UpstreamConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		logger:  logger.Named("upstream"),
	}
}

// Do выполняет вызов и возвращает тело как есть. Ошибка — только при сетевом сбое.
func (c *Client) Do(ctx context.Context, call Call) (*Response, error) {
	var body io.Reader
	if call.Body != nil {
		payload, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("upstream: encode %s body: %w", call.Route.Action, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, call.Route.Method, c.baseURL+call.Route.Path, body)
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(APIKeyHeader, c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("auth api request failed",
			zap.String("action", call.Route.Action),
			zap.String("path", call.Route.Path),
			zap.Error(err))
		return nil, &TransportError{Path: call.Route.Path, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Path: call.Route.Path, Err: err}
	}

	resp := &Response{
		Status:     res.StatusCode,
		Body:       normalizeBody(raw),
		RetryAfter: parseRetryAfter(res.Header.Get("Retry-After")),
	}

	if !resp.OK() {
		c.logger.Warn("auth api returned non-2xx",
			zap.String("action", call.Route.Action),
			zap.Int("status", resp.Status))
	}
	return resp, nil
}

// normalizeBody гарантирует валидный JSON: пустое тело -> null, не-JSON -> строка.
func normalizeBody(raw []byte) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	quoted, _ := json.Marshal(string(raw))
	return json.RawMessage(quoted)
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// Decode разбирает тело успешного ответа в out.
func Decode(resp *Response, out any) error {
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("upstream: decode response: %w", err)
	}
	return nil
}
