package testbackend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Kirill-j/bookinghub/internal/lib/daytime"
	"github.com/Kirill-j/bookinghub/internal/models"
)

var errConflict = errors.New("Выбранное время уже занято")

func (s *Server) parseTime(raw string) (time.Time, error) {
	return daytime.ParseTimestamp(raw, s.loc)
}

func (s *Server) resourceBookings(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		http.Error(w, "Некорректный id ресурса", http.StatusBadRequest)
		return
	}
	fromRaw := strings.TrimSpace(r.URL.Query().Get("from"))
	toRaw := strings.TrimSpace(r.URL.Query().Get("to"))
	if fromRaw == "" || toRaw == "" {
		http.Error(w, "Нужны параметры from и to в формате YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	from, err := time.ParseInLocation(daytime.DateLayout, fromRaw, s.loc)
	if err != nil {
		http.Error(w, "Некорректный from", http.StatusBadRequest)
		return
	}
	to, err := time.ParseInLocation(daytime.DateLayout, toRaw, s.loc)
	if err != nil {
		http.Error(w, "Некорректный to", http.StatusBadRequest)
		return
	}
	to = to.AddDate(0, 0, 1)

	s.mu.Lock()
	var items []models.Booking
	for _, bid := range sortedKeys(s.bookings) {
		b := s.bookings[bid]
		if b.ResourceID != id {
			continue
		}
		start, err := s.parseTime(b.StartAt)
		if err != nil {
			// битые метки отдаём как есть, клиент обязан их пропустить
			items = append(items, *b)
			continue
		}
		if !start.Before(from) && start.Before(to) {
			items = append(items, *b)
		}
	}
	s.mu.Unlock()
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) myBookings(w http.ResponseWriter, r *http.Request) {
	uid := userIDFrom(r)

	s.mu.Lock()
	var items []models.Booking
	for _, id := range sortedKeys(s.bookings) {
		if b := s.bookings[id]; b.UserID == uid {
			items = append(items, *b)
		}
	}
	s.mu.Unlock()
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) pendingBookings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var items []models.Booking
	for _, id := range sortedKeys(s.bookings) {
		if b := s.bookings[id]; b.Status == models.BookingPending {
			items = append(items, *b)
		}
	}
	s.mu.Unlock()
	writeJSON(w, r, http.StatusOK, items)
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return
	}
	start, err := s.parseTime(req.StartAt)
	if err != nil {
		http.Error(w, "Некорректное startAt. Формат: YYYY-MM-DDTHH:MM:SS", http.StatusBadRequest)
		return
	}
	end, err := s.parseTime(req.EndAt)
	if err != nil {
		http.Error(w, "Некорректное endAt. Формат: YYYY-MM-DDTHH:MM:SS", http.StatusBadRequest)
		return
	}
	switch {
	case req.ResourceID == 0 || !end.After(start):
		http.Error(w, "Некорректный интервал времени", http.StatusBadRequest)
		return
	case end.Sub(start) < 30*time.Minute:
		http.Error(w, "Минимальная длительность бронирования: 30 минут", http.StatusBadRequest)
		return
	case start.Before(s.now().Add(-time.Minute)):
		http.Error(w, "Нельзя бронировать время в прошлом", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.resources[req.ResourceID]; !found {
		http.Error(w, "Ресурс не найден", http.StatusNotFound)
		return
	}
	if s.hasConflict(req.ResourceID, start, end) {
		http.Error(w, errConflict.Error(), http.StatusConflict)
		return
	}
	b := &models.Booking{
		ID:         s.id(),
		ResourceID: req.ResourceID,
		UserID:     userIDFrom(r),
		StartAt:    start.Format(time.RFC3339),
		EndAt:      end.Format(time.RFC3339),
		Status:     models.BookingPending,
	}
	s.bookings[b.ID] = b
	writeJSON(w, r, http.StatusCreated, models.Created{ID: b.ID})
}

// hasConflict вызывается под s.mu.
func (s *Server) hasConflict(resourceID uint64, start, end time.Time) bool {
	for _, b := range s.bookings {
		if b.ResourceID != resourceID || !b.Status.IsLive() {
			continue
		}
		bs, err1 := s.parseTime(b.StartAt)
		be, err2 := s.parseTime(b.EndAt)
		if err1 != nil || err2 != nil {
			continue
		}
		if start.Before(be) && bs.Before(end) {
			return true
		}
	}
	return false
}

func (s *Server) cancelBooking(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		http.Error(w, "Некорректный id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, found := s.bookings[id]
	if !found {
		http.Error(w, "Бронирование не найдено", http.StatusNotFound)
		return
	}
	if b.UserID != userIDFrom(r) {
		http.Error(w, "Можно отменять только свои бронирования", http.StatusForbidden)
		return
	}
	if !b.Status.IsLive() {
		http.Error(w, "Отменить можно только PENDING или APPROVED", http.StatusBadRequest)
		return
	}
	b.Status = models.BookingCanceled
	ok(w, r)
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		http.Error(w, "Некорректный id", http.StatusBadRequest)
		return
	}
	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Некорректный JSON", http.StatusBadRequest)
		return
	}
	if req.Status != models.BookingApproved && req.Status != models.BookingRejected {
		http.Error(w, "status должен быть APPROVED или REJECTED", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, found := s.bookings[id]
	if !found {
		http.Error(w, "Бронирование не найдено", http.StatusNotFound)
		return
	}
	if b.Status != models.BookingPending {
		http.Error(w, "Можно менять статус только у брони со статусом PENDING", http.StatusBadRequest)
		return
	}
	b.Status = req.Status
	b.ManagerComment = req.ManagerComment
	ok(w, r)
}
