package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Kirill-j/bookinghub/internal/lib/daytime"
	"github.com/Kirill-j/bookinghub/internal/models"
	"github.com/Kirill-j/bookinghub/internal/scheduler"
)

// BookingSource загружает брони ресурса за диапазон дат.
type BookingSource interface {
	ResourceBookings(ctx context.Context, token string, resourceID uint64, from, to string) ([]models.Booking, error)
}

// BusyBooking — бронь, попавшая в занятость дня, с временем в минутах суток.
type BusyBooking struct {
	models.Booking
	Interval scheduler.Interval
	Start    string
	End      string
}

// Occupancy — занятость ресурса в конкретный день.
type Occupancy struct {
	ResourceID uint64
	Date       string
	Bookings   []BusyBooking
}

// Busy возвращает интервалы занятости в порядке бэкенда.
func (o Occupancy) Busy() []scheduler.Interval {
	out := make([]scheduler.Interval, 0, len(o.Bookings))
	for _, b := range o.Bookings {
		out = append(out, b.Interval)
	}
	return out
}

// Oracle — кэш занятости по ключу (ресурс, дата).
type Oracle struct {
	src BookingSource
	loc *time.Location

	mu    sync.Mutex
	slots map[string]*Slot[Occupancy]
}

// NewOracle создаёт кэш занятости. Метки времени броней переводятся в минуты суток в зоне loc.
func NewOracle(src BookingSource, loc *time.Location) *Oracle {
	if loc == nil {
		loc = time.Local
	}
	return &Oracle{src: src, loc: loc, slots: make(map[string]*Slot[Occupancy])}
}

func occupancyKey(resourceID uint64, date string) string {
	return strconv.FormatUint(resourceID, 10) + "@" + date
}

func (o *Oracle) slot(resourceID uint64, date string) *Slot[Occupancy] {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := occupancyKey(resourceID, date)
	s, ok := o.slots[key]
	if !ok {
		s = NewSlot[Occupancy]("occupancy")
		o.slots[key] = s
	}
	return s
}

// Load запрашивает брони ресурса за дату date (YYYY-MM-DD) и строит занятость дня.
// Брони с неразбираемыми метками времени молча пропускаются.
func (o *Oracle) Load(ctx context.Context, token string, resourceID uint64, date string) (Occupancy, error) {
	const op = "cache.Oracle.Load"

	if _, err := time.Parse(daytime.DateLayout, date); err != nil {
		return Occupancy{}, fmt.Errorf("%s: invalid date %q: %w", op, date, err)
	}

	occ, err := o.slot(resourceID, date).Refresh(ctx, func(ctx context.Context) (Occupancy, error) {
		bookings, err := o.src.ResourceBookings(ctx, token, resourceID, date, date)
		if err != nil {
			return Occupancy{}, err
		}
		return o.build(resourceID, date, bookings), nil
	})
	if err != nil {
		return Occupancy{}, fmt.Errorf("%s: %w", op, err)
	}
	return occ, nil
}

// Cached возвращает последнюю загруженную занятость без запроса к бэкенду.
func (o *Oracle) Cached(resourceID uint64, date string) (Occupancy, bool) {
	o.mu.Lock()
	s, ok := o.slots[occupancyKey(resourceID, date)]
	o.mu.Unlock()
	if !ok {
		return Occupancy{}, false
	}
	return s.Get()
}

// Invalidate забывает занятость ресурса за дату и удаляет её слот.
// Незагруженные ключи не создаются.
func (o *Oracle) Invalidate(resourceID uint64, date string) {
	key := occupancyKey(resourceID, date)

	o.mu.Lock()
	s, ok := o.slots[key]
	delete(o.slots, key)
	o.mu.Unlock()

	if ok {
		s.Clear()
	}
}


// Reset забывает всю занятость.
func (o *Oracle) Reset() {
	o.mu.Lock()
	slots := o.slots
	o.slots = make(map[string]*Slot[Occupancy])
	o.mu.Unlock()

	for _, s := range slots {
		s.Clear()
	}
}

func (o *Oracle) build(resourceID uint64, date string, bookings []models.Booking) Occupancy {
	occ := Occupancy{ResourceID: resourceID, Date: date, Bookings: make([]BusyBooking, 0, len(bookings))}
	for _, b := range bookings {
		start, err := daytime.ParseTimestamp(b.StartAt, o.loc)
		if err != nil {
			continue
		}
		end, err := daytime.ParseTimestamp(b.EndAt, o.loc)
		if err != nil {
			continue
		}
		iv := scheduler.Interval{Start: daytime.MinuteOfDay(start), End: daytime.MinuteOfDay(end)}
		// конец ровно в 00:00 следующего дня считается минутой 1440;
		// прочие брони через полночь переводятся в минуты без переноса
		if end.Equal(nextMidnight(start)) {
			iv.End = daytime.MinutesPerDay
		}
		occ.Bookings = append(occ.Bookings, BusyBooking{
			Booking:  b,
			Interval: iv,
			Start:    start.Format(daytime.ClockLayout),
			End:      end.Format(daytime.ClockLayout),
		})
	}
	return occ
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
