package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/events"
	"github.com/Kirill-j/bookinghub/internal/lib/daytime"
	"github.com/Kirill-j/bookinghub/internal/lib/sl"
	"github.com/Kirill-j/bookinghub/internal/metrics"
	"github.com/Kirill-j/bookinghub/internal/models"
	"github.com/Kirill-j/bookinghub/internal/scheduler"
)

// FreeSlot — предложенное свободное окно.
type FreeSlot struct {
	ResourceID uint64 `json:"resourceId"`
	Date       string `json:"date"`
	Duration   int    `json:"duration"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

// BookingView — бронь с названием ресурса и временем в формате HH:MM.
type BookingView struct {
	models.Booking
	ResourceTitle string `json:"resourceTitle"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	End           string `json:"end"`
}

// Occupancy возвращает занятость ресурса в день date.
func (s *Service) Occupancy(ctx context.Context, resourceID uint64, date string) (cache.Occupancy, error) {
	const op = "assistant.Occupancy"

	occ, err := s.oracle.Load(ctx, s.session.Token(), resourceID, date)
	if err != nil {
		return cache.Occupancy{}, fmt.Errorf("%s: %w", op, err)
	}
	return occ, nil
}

// SuggestSlot подбирает самое раннее свободное окно длиной rawDuration минут
// в рабочем окне дня date. Некорректная длительность заменяется длительностью по умолчанию.
func (s *Service) SuggestSlot(ctx context.Context, resourceID uint64, date, rawDuration string) (FreeSlot, error) {
	const op = "assistant.SuggestSlot"

	duration := s.policy.ParseDuration(rawDuration)
	occ, err := s.Occupancy(ctx, resourceID, date)
	if err != nil {
		return FreeSlot{}, fmt.Errorf("%s: %w", op, err)
	}

	slot, err := s.policy.FindFreeSlot(duration, occ.Busy())
	if err != nil {
		if errors.Is(err, scheduler.ErrNoFreeSlot) {
			metrics.SlotSearches.WithLabelValues("none").Inc()
		}
		return FreeSlot{}, fmt.Errorf("%s: %w", op, err)
	}
	metrics.SlotSearches.WithLabelValues("found").Inc()

	return FreeSlot{
		ResourceID: resourceID,
		Date:       date,
		Duration:   duration,
		Start:      slot.StartHHMM(),
		End:        slot.EndHHMM(),
	}, nil
}

// CreateBooking отправляет заявку на бронь. Время начала и конца задаётся как HH:MM в дне draft.Date.
func (s *Service) CreateBooking(ctx context.Context, draft models.BookingDraft) (uint64, error) {
	const op = "assistant.CreateBooking"

	token, err := s.token()
	if err != nil {
		return 0, err
	}
	draft.Date = strings.TrimSpace(draft.Date)
	draft.Start = strings.TrimSpace(draft.Start)
	draft.End = strings.TrimSpace(draft.End)
	if err := s.check(draft); err != nil {
		return 0, err
	}

	day, err := time.Parse(daytime.DateLayout, draft.Date)
	if err != nil {
		return 0, invalid("date must be YYYY-MM-DD")
	}
	start, err := daytime.HHMMToMinutes(draft.Start)
	if err != nil {
		return 0, invalid("start: %v", err)
	}
	end, err := daytime.HHMMToMinutes(draft.End)
	if err != nil {
		return 0, invalid("end: %v", err)
	}
	// 24:00 допустимо только как конец брони
	if start >= daytime.MinutesPerDay || end > daytime.MinutesPerDay {
		return 0, invalid("time must be between 00:00 and 24:00")
	}
	if end <= start {
		return 0, invalid("end must be after start")
	}
	if end-start < s.policy.MinDuration {
		return 0, invalid("minimum booking duration is %d minutes", s.policy.MinDuration)
	}

	req := models.BookingRequest{
		ResourceID: draft.ResourceID,
		StartAt:    daytime.LocalTimestamp(day, start),
		EndAt:      daytime.LocalTimestamp(day, end),
	}
	id, err := s.gw.CreateBooking(ctx, token, req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.afterBookingChange(ctx, events.Event{
		Type:       events.BookingCreated,
		BookingID:  id,
		ResourceID: draft.ResourceID,
		Date:       draft.Date,
		Status:     string(models.BookingPending),
	})
	if _, err := s.oracle.Load(ctx, token, draft.ResourceID, draft.Date); err != nil {
		s.log.Warn("occupancy re-sync failed", slog.String("op", op), sl.Err(err))
	}
	return id, nil
}

// MyBookings возвращает брони текущего пользователя.
func (s *Service) MyBookings(ctx context.Context) ([]BookingView, error) {
	const op = "assistant.MyBookings"

	token, err := s.token()
	if err != nil {
		return nil, err
	}
	items, err := s.myBookings.Refresh(ctx, func(ctx context.Context) ([]models.Booking, error) {
		return s.gw.MyBookings(ctx, token)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.bookingViews(ctx, token, items), nil
}

// PendingBookings возвращает брони, ожидающие решения. Доступно менеджерам и администраторам.
func (s *Service) PendingBookings(ctx context.Context) ([]BookingView, error) {
	const op = "assistant.PendingBookings"

	token, err := s.token()
	if err != nil {
		return nil, err
	}
	if !s.Capabilities().CanModerateBookings {
		return nil, ErrNotAllowed
	}
	items, err := s.pending.Refresh(ctx, func(ctx context.Context) ([]models.Booking, error) {
		return s.gw.PendingBookings(ctx, token)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.bookingViews(ctx, token, items), nil
}

// CancelBooking отменяет бронь текущего пользователя.
func (s *Service) CancelBooking(ctx context.Context, id uint64) error {
	const op = "assistant.CancelBooking"

	token, err := s.token()
	if err != nil {
		return err
	}
	if err := s.gw.CancelBooking(ctx, token, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.afterBookingChange(ctx, s.bookingEvent(events.BookingCanceled, id, models.BookingCanceled))
	return nil
}

// SetBookingStatus подтверждает или отклоняет бронь. Пустой комментарий не отправляется.
func (s *Service) SetBookingStatus(ctx context.Context, id uint64, req models.StatusUpdateRequest) error {
	const op = "assistant.SetBookingStatus"

	token, err := s.token()
	if err != nil {
		return err
	}
	if !s.Capabilities().CanModerateBookings {
		return ErrNotAllowed
	}
	req.ManagerComment = optional(req.ManagerComment)
	if err := s.check(req); err != nil {
		return err
	}
	if err := s.gw.SetBookingStatus(ctx, token, id, req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.afterBookingChange(ctx, s.bookingEvent(events.BookingStatusChanged, id, req.Status))
	return nil
}

// bookingEvent собирает событие по брони, известной из кэшей; ресурс и дата
// остаются пустыми, если бронь не найдена.
func (s *Service) bookingEvent(typ string, id uint64, status models.BookingStatus) events.Event {
	ev := events.Event{Type: typ, BookingID: id, Status: string(status)}
	for _, slot := range []*cache.Slot[[]models.Booking]{s.myBookings, s.pending} {
		items, ok := slot.Get()
		if !ok {
			continue
		}
		for _, b := range items {
			if b.ID != id {
				continue
			}
			ev.ResourceID = b.ResourceID
			if t, err := daytime.ParseTimestamp(b.StartAt, s.loc); err == nil {
				ev.Date = t.Format(daytime.DateLayout)
			}
			return ev
		}
	}
	return ev
}

// afterBookingChange сбрасывает кэши броней и оповещает другие экземпляры.
func (s *Service) afterBookingChange(ctx context.Context, ev events.Event) {
	if ev.ResourceID != 0 && ev.Date != "" {
		s.oracle.Invalidate(ev.ResourceID, ev.Date)
	} else {
		s.oracle.Reset()
	}
	s.myBookings.Clear()
	s.pending.Clear()
	s.publish(ctx, ev)
}

func (s *Service) bookingViews(ctx context.Context, token string, items []models.Booking) []BookingView {
	if !s.catalog.Loaded() {
		if err := s.catalog.Refresh(ctx, token); err != nil {
			s.log.Warn("catalog unavailable, resource titles omitted", sl.Err(err))
		}
	}
	out := make([]BookingView, 0, len(items))
	for _, b := range items {
		v := BookingView{
			Booking: b,
			Start:   daytime.ToTimeHHMM(b.StartAt, s.loc),
			End:     daytime.ToTimeHHMM(b.EndAt, s.loc),
		}
		if r, ok := s.catalog.Resource(b.ResourceID); ok {
			v.ResourceTitle = r.Title
		} else {
			v.ResourceTitle = "#" + strconv.FormatUint(b.ResourceID, 10)
		}
		if t, err := daytime.ParseTimestamp(b.StartAt, s.loc); err == nil {
			v.Date = t.Format(daytime.DateLayout)
		}
		out = append(out, v)
	}
	return out
}
