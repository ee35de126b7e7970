// Package cache содержит клиентские кэши ассистента: обобщённый слот с упорядочиванием
// обновлений, кэш каталога, кэш занятости ресурсов и JSON-кэш в Redis.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Kirill-j/bookinghub/internal/metrics"
)

// ErrSuperseded возвращается из Refresh, если загрузку отменил более новый Refresh, Set или Clear.
var ErrSuperseded = errors.New("refresh superseded by a newer one")

// Slot хранит одно значение, которое заменяется только целиком.
//
// Каждый Refresh получает билет из возрастающей последовательности и отменяет
// предыдущую незавершённую загрузку. Результат сохраняется, только если его билет
// новее билета сохранённого значения, поэтому запоздавший ответ не перетирает свежие данные.
type Slot[T any] struct {
	name string

	mu        sync.Mutex
	value     T
	loaded    bool
	updatedAt time.Time
	issued    uint64
	committed uint64
	cancel    context.CancelFunc
}

// NewSlot создаёт пустой слот. name используется как метка в метриках.
func NewSlot[T any](name string) *Slot[T] {
	return &Slot[T]{name: name}
}

// Get возвращает текущее значение и признак того, что оно было загружено.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.loaded
}

// UpdatedAt возвращает время последней записи в слот.
func (s *Slot[T]) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Set записывает значение в обход загрузки. Незавершённая загрузка отменяется,
// а её результат будет отброшен.
func (s *Slot[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.issued++
	s.committed = s.issued
	s.value = v
	s.loaded = true
	s.updatedAt = time.Now()
}

// Clear сбрасывает слот в пустое состояние.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.issued++
	s.committed = s.issued
	var zero T
	s.value = zero
	s.loaded = false
	s.updatedAt = time.Now()
}

// Refresh загружает новое значение через fetch и сохраняет его, если за время загрузки
// в слот не было записано ничего новее. Если более новое значение уже сохранено,
// возвращается оно, а результат fetch отбрасывается.
func (s *Slot[T]) Refresh(ctx context.Context, fetch func(ctx context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	s.stopLocked()
	s.issued++
	ticket := s.issued
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	v, err := fetch(fetchCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket == s.issued {
		s.cancel = nil
	}
	cancel()

	if ticket <= s.committed {
		metrics.StaleResponses.WithLabelValues(s.name).Inc()
		if err != nil {
			var zero T
			return zero, ErrSuperseded
		}
		return s.value, nil
	}
	if err != nil {
		if ticket < s.issued && errors.Is(err, context.Canceled) {
			var zero T
			return zero, ErrSuperseded
		}
		var zero T
		return zero, err
	}

	s.committed = ticket
	s.value = v
	s.loaded = true
	s.updatedAt = time.Now()
	return v, nil
}

func (s *Slot[T]) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
