// Package bookings реализует HTTP-обработчики бронирования: занятость дня,
// подбор свободного окна, создание, отмену и модерацию броней.
package bookings

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/http/request"
	"github.com/Kirill-j/bookinghub/internal/http/response"
	"github.com/Kirill-j/bookinghub/internal/models"
	"github.com/Kirill-j/bookinghub/internal/services/assistant"
)

// Service описывает операции ассистента над бронями.
type Service interface {
	Occupancy(ctx context.Context, resourceID uint64, date string) (cache.Occupancy, error)
	SuggestSlot(ctx context.Context, resourceID uint64, date, rawDuration string) (assistant.FreeSlot, error)
	CreateBooking(ctx context.Context, draft models.BookingDraft) (uint64, error)
	MyBookings(ctx context.Context) ([]assistant.BookingView, error)
	PendingBookings(ctx context.Context) ([]assistant.BookingView, error)
	CancelBooking(ctx context.Context, id uint64) error
	SetBookingStatus(ctx context.Context, id uint64, req models.StatusUpdateRequest) error
}

// Handler обслуживает маршруты /resources/{id}/... и /bookings.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// BusyView — занятый интервал дня в ответе API.
type BusyView struct {
	BookingID uint64               `json:"bookingId"`
	Status    models.BookingStatus `json:"status"`
	Start     string               `json:"start"`
	End       string               `json:"end"`
	StartMin  int                  `json:"startMinute"`
	EndMin    int                  `json:"endMinute"`
}

// OccupancyView — занятость ресурса в день.
type OccupancyView struct {
	ResourceID uint64     `json:"resourceId"`
	Date       string     `json:"date"`
	Busy       []BusyView `json:"busy"`
}

func occupancyView(occ cache.Occupancy) OccupancyView {
	out := OccupancyView{ResourceID: occ.ResourceID, Date: occ.Date, Busy: make([]BusyView, 0, len(occ.Bookings))}
	for _, b := range occ.Bookings {
		out.Busy = append(out.Busy, BusyView{
			BookingID: b.ID,
			Status:    b.Status,
			Start:     b.Start,
			End:       b.End,
			StartMin:  b.Interval.Start,
			EndMin:    b.Interval.End,
		})
	}
	return out
}

// Occupancy godoc
// @Summary Занятость ресурса
// @Description Брони ресурса за день в минутах суток и в формате HH:MM.
// @Tags Bookings
// @Produce json
// @Param id path int true "Ресурс"
// @Param date query string true "Дата YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректная дата"
// @Failure 502 {object} response.ErrorResponse "Бэкенд недоступен"
// @Router /resources/{id}/occupancy [get]
func (h *Handler) Occupancy(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.bookings.Occupancy")

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	occ, err := h.service.Occupancy(r.Context(), id, r.URL.Query().Get("date"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(occupancyView(occ)))
}

// FreeSlot godoc
// @Summary Подобрать свободное время
// @Description Самое раннее окно нужной длины между 08:00 и 20:00 с шагом 15 минут.
// @Tags Bookings
// @Produce json
// @Param id path int true "Ресурс"
// @Param date query string true "Дата YYYY-MM-DD"
// @Param duration query int false "Длительность в минутах, по умолчанию 60"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Свободного окна нет"
// @Router /resources/{id}/free-slot [get]
func (h *Handler) FreeSlot(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.bookings.FreeSlot")

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	q := r.URL.Query()
	slot, err := h.service.SuggestSlot(r.Context(), id, q.Get("date"), q.Get("duration"))
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Debug("free slot found", slog.String("start", slot.Start), slog.String("end", slot.End))
	render.JSON(w, r, response.OKWithData(slot))
}

// Create отправляет заявку на бронь.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.bookings.Create")

	var draft models.BookingDraft
	if err := request.Decode(r, &draft); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	id, err := h.service.CreateBooking(r.Context(), draft)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("booking created", slog.Uint64("id", id), slog.Uint64("resource_id", draft.ResourceID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(models.Created{ID: id}))
}

// My возвращает брони текущего пользователя.
func (h *Handler) My(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.bookings.My")

	items, err := h.service.MyBookings(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

// Pending возвращает брони, ожидающие решения менеджера.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.bookings.Pending")

	items, err := h.service.PendingBookings(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

// Cancel отменяет бронь.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.bookings.Cancel")

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.service.CancelBooking(r.Context(), id); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK())
}

// SetStatus подтверждает или отклоняет бронь.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.bookings.SetStatus")

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var req models.StatusUpdateRequest
	if err := request.Decode(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.service.SetBookingStatus(r.Context(), id, req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("booking status changed", slog.Uint64("id", id), slog.String("status", string(req.Status)))
	render.JSON(w, r, response.OK())
}
