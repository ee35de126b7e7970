package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Kirill-j/bookinghub/internal/models"
)

// ResourceBookings возвращает брони ресурса в диапазоне дат [from, to] включительно.
// Даты передаются в формате YYYY-MM-DD.
func (c *Client) ResourceBookings(ctx context.Context, token string, resourceID uint64, from, to string) ([]models.Booking, error) {
	const op = "gateway.ResourceBookings"

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	path := "/api/resources/" + strconv.FormatUint(resourceID, 10) + "/bookings?" + q.Encode()

	items := []models.Booking{}
	if err := c.call(ctx, http.MethodGet, path, "/api/resources/:id/bookings", token, nil, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// MyBookings возвращает брони текущего пользователя.
func (c *Client) MyBookings(ctx context.Context, token string) ([]models.Booking, error) {
	const op = "gateway.MyBookings"

	items := []models.Booking{}
	if err := c.call(ctx, http.MethodGet, "/api/bookings/my", "/api/bookings/my", token, nil, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// PendingBookings возвращает брони, ожидающие решения менеджера.
func (c *Client) PendingBookings(ctx context.Context, token string) ([]models.Booking, error) {
	const op = "gateway.PendingBookings"

	items := []models.Booking{}
	if err := c.call(ctx, http.MethodGet, "/api/bookings/pending", "/api/bookings/pending", token, nil, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// CreateBooking создаёт бронь и возвращает её идентификатор.
func (c *Client) CreateBooking(ctx context.Context, token string, req models.BookingRequest) (uint64, error) {
	const op = "gateway.CreateBooking"

	var created models.Created
	if err := c.call(ctx, http.MethodPost, "/api/bookings", "/api/bookings", token, req, &created); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return created.ID, nil
}

// CancelBooking отменяет собственную бронь.
func (c *Client) CancelBooking(ctx context.Context, token string, id uint64) error {
	const op = "gateway.CancelBooking"

	path := "/api/bookings/" + strconv.FormatUint(id, 10) + "/cancel"
	if err := c.call(ctx, http.MethodPost, path, "/api/bookings/:id/cancel", token, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetBookingStatus передаёт решение менеджера по брони.
func (c *Client) SetBookingStatus(ctx context.Context, token string, id uint64, req models.StatusUpdateRequest) error {
	const op = "gateway.SetBookingStatus"

	path := "/api/bookings/" + strconv.FormatUint(id, 10) + "/status"
	if err := c.call(ctx, http.MethodPatch, path, "/api/bookings/:id/status", token, req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
