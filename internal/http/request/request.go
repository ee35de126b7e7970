// Package request содержит разбор входящих запросов API ассистента.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
)

var (
	// ErrBadBody возвращается, когда тело запроса не удалось разобрать как JSON.
	ErrBadBody = errors.New("invalid request body")
	// ErrBadID возвращается, когда параметр пути не является положительным целым.
	ErrBadID = errors.New("invalid id")
	// ErrBadQuery возвращается для некорректного query-параметра.
	ErrBadQuery = errors.New("invalid query parameter")
)

// Decode разбирает JSON-тело запроса в v.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadBody, err)
	}
	return nil
}

// ID возвращает числовой параметр пути name.
func ID(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadID, raw)
	}
	return id, nil
}

// OptionalInt разбирает необязательный числовой query-параметр. Пустое значение даёт nil.
func OptionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %q", ErrBadQuery, name, raw)
	}
	return &v, nil
}
