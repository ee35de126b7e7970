// Package gateway реализует клиент внешнего REST API бронирований.
//
// Каждый метод соответствует одному эндпоинту бэкенда. Клиент не хранит токен:
// его передаёт вызывающий код, и он прикрепляется заголовком Authorization: Bearer.
// Любой ответ с неуспешным статусом превращается в *StatusError с телом ответа
// в качестве текста. Повторов и таймаутов по умолчанию нет.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kirill-j/bookinghub/internal/lib/sl"
	"github.com/Kirill-j/bookinghub/internal/metrics"
)

// StatusError — неуспешный HTTP-ответ бэкенда. Body хранит тело ответа без изменений.
type StatusError struct {
	Code int
	Body string
}

// Error возвращает тело ответа без ведущих и завершающих пробелов и переводов строки:
// http.Error на бэкенде дописывает к тексту "\n". Если тело пустое, возвращается
// текст статуса.
func (e *StatusError) Error() string {
	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}
	return fmt.Sprintf("unexpected status: %d %s", e.Code, http.StatusText(e.Code))
}

// StatusCode возвращает код ответа из err, если это *StatusError, иначе 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsUnauthorized сообщает, что бэкенд отклонил учётные данные.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// Client — клиент бэкенда.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// New создаёт клиент для бэкенда по адресу baseURL.
// timeout, равный нулю, означает отсутствие таймаута.
func New(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout}, log)
}

// NewWithHTTPClient создаёт клиент с заданным http.Client.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send выполняет запрос и возвращает тело успешного ответа.
// route задаёт шаблон пути для метрик и логов, например "/api/bookings/:id/cancel".
func (c *Client) send(req *http.Request, route string) ([]byte, error) {
	log := c.log.With(
		slog.String("method", req.Method),
		slog.String("route", route),
		slog.String("request_id", req.Header.Get("X-Request-ID")),
	)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.GatewayDuration.WithLabelValues(req.Method, route).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(req.Method, route, "error").Inc()
		log.Error("backend request failed", sl.Err(err))
		return nil, err
	}
	defer resp.Body.Close()

	metrics.GatewayRequests.WithLabelValues(req.Method, route, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read backend response", sl.Err(err))
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("backend returned error status", slog.Int("status", resp.StatusCode))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(data)}
	}
	log.Debug("backend request done", slog.Int("status", resp.StatusCode))
	return data, nil
}

// call выполняет JSON-запрос и декодирует ответ в out, если out не nil.
// Пустое тело и null оставляют out без изменений.
func (c *Client) call(ctx context.Context, method, path, route, token string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	data, err := c.send(req, route)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode %s response: %w", route, err)
	}
	return nil
}

// Health проверяет доступность бэкенда и возвращает текст ответа.
func (c *Client) Health(ctx context.Context) (string, error) {
	const op = "gateway.Health"

	req, err := c.newRequest(ctx, http.MethodGet, "/api/health", "", nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	data, err := c.send(req, "/api/health")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return strings.TrimSpace(string(data)), nil
}
