// Package system реализует служебные обработчики: статус бэкенда и возможности текущего пользователя.
package system

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/Kirill-j/bookinghub/internal/authz"
	"github.com/Kirill-j/bookinghub/internal/http/response"
)

// Service описывает нужные обработчикам методы ассистента.
type Service interface {
	Health(ctx context.Context) (string, error)
	Capabilities() authz.Capabilities
}

// Handler обслуживает /health и /capabilities.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// Health godoc
// @Summary Статус бэкенда
// @Description Возвращает текст ответа GET /api/health бэкенда бронирований.
// @Tags System
// @Produce json
// @Success 200 {object} response.Response
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.system.Health"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	status, err := h.service.Health(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"backend": status,
	}))
}

// Capabilities возвращает действия, которые клиент предлагает текущему пользователю.
func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(h.service.Capabilities()))
}
