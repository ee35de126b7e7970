package response

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/gateway"
	"github.com/Kirill-j/bookinghub/internal/http/request"
	"github.com/Kirill-j/bookinghub/internal/lib/sl"
	"github.com/Kirill-j/bookinghub/internal/scheduler"
	"github.com/Kirill-j/bookinghub/internal/services/assistant"
)

// StatusFor подбирает HTTP-статус для ошибки сервиса.
// Коды 4xx бэкенда пробрасываются как есть, остальные ответы и сбои транспорта дают 502.
func StatusFor(err error) int {
	var verr *assistant.ValidationError
	var perr *time.ParseError
	switch {
	case errors.As(err, &verr), errors.As(err, &perr),
		errors.Is(err, request.ErrBadBody), errors.Is(err, request.ErrBadID), errors.Is(err, request.ErrBadQuery):
		return http.StatusBadRequest
	case errors.Is(err, assistant.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, assistant.ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, scheduler.ErrNoFreeSlot):
		return http.StatusNotFound
	case errors.Is(err, cache.ErrSuperseded):
		return http.StatusConflict
	}

	switch code := gateway.StatusCode(err); code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusConflict:
		return code
	}
	return http.StatusBadGateway
}

// Fail пишет ответ с ошибкой. Для ошибок бэкенда клиенту отдаётся текст ответа бэкенда,
// для ошибок валидации отдаётся перечень нарушений.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := StatusFor(err)
	render.Status(r, status)

	var verr *assistant.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		log.Info("validation failed", sl.Err(err))
		render.JSON(w, r, ValidationError(verr.Fields))
		return
	}

	msg := message(err, status)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), sl.Err(err))
	}
	render.JSON(w, r, Error(msg))
}

func message(err error, status int) string {
	var verr *assistant.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, request.ErrBadBody):
		return request.ErrBadBody.Error()
	case errors.Is(err, request.ErrBadID), errors.Is(err, request.ErrBadQuery):
		return err.Error()
	case errors.Is(err, assistant.ErrNotAuthenticated):
		return "authentication required"
	case errors.Is(err, assistant.ErrNotAllowed):
		return "action is not available for the current role"
	case errors.Is(err, scheduler.ErrNoFreeSlot):
		return "no free slot within working hours"
	case errors.Is(err, cache.ErrSuperseded):
		return "request superseded by a newer one"
	}
	if gateway.StatusCode(err) != 0 {
		return gateway.Message(err)
	}
	if status == http.StatusBadRequest {
		return "invalid date, expected YYYY-MM-DD"
	}
	return "backend unavailable"
}
