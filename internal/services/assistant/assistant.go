// Package assistant содержит бизнес-логику ассистента бронирования: каждому действию
// пользователя клиента соответствует один метод сервиса.
//
// Сервис проверяет формы до обращения к бэкенду, не предлагает действия, которые
// запрещены ролью, и после каждой успешной мутации пересинхронизирует затронутые кэши.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/events"
	"github.com/Kirill-j/bookinghub/internal/lib/sl"
	"github.com/Kirill-j/bookinghub/internal/models"
	"github.com/Kirill-j/bookinghub/internal/scheduler"
	"github.com/Kirill-j/bookinghub/internal/session"
)

var (
	// ErrNotAuthenticated — действие требует входа.
	ErrNotAuthenticated = errors.New("authentication required")
	// ErrNotAllowed — действие не предлагается пользователю с текущей ролью.
	ErrNotAllowed = errors.New("action is not available for the current role")
)

// ValidationError — ошибка проверки формы на стороне клиента. Запрос на бэкенд не отправлялся.
type ValidationError struct {
	Fields validator.ValidationErrors
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field())
	}
	return "invalid fields: " + strings.Join(names, ", ")
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Gateway — операции бэкенда, которыми пользуется сервис.
type Gateway interface {
	Health(ctx context.Context) (string, error)

	UpdateMe(ctx context.Context, token string, req models.UpdateProfileRequest) error
	DeleteMe(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) error
	PublicUser(ctx context.Context, token string, id uint64) (*models.User, error)

	Categories(ctx context.Context, token string) ([]models.Category, error)
	CreateCategory(ctx context.Context, token string, req models.CategoryRequest) (uint64, error)
	RenameCategory(ctx context.Context, token string, id uint64, req models.CategoryRequest) error
	DeleteCategory(ctx context.Context, token string, id uint64) error
	Resources(ctx context.Context, token string) ([]models.Resource, error)
	MyResources(ctx context.Context, token string) ([]models.Resource, error)
	CreateResource(ctx context.Context, token string, req models.CreateResourceRequest) (uint64, error)

	ResourceBookings(ctx context.Context, token string, resourceID uint64, from, to string) ([]models.Booking, error)
	MyBookings(ctx context.Context, token string) ([]models.Booking, error)
	PendingBookings(ctx context.Context, token string) ([]models.Booking, error)
	CreateBooking(ctx context.Context, token string, req models.BookingRequest) (uint64, error)
	CancelBooking(ctx context.Context, token string, id uint64) error
	SetBookingStatus(ctx context.Context, token string, id uint64, req models.StatusUpdateRequest) error
}

// Publisher отправляет события об изменениях другим экземплярам ассистента.
type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// Service — ассистент бронирования.
type Service struct {
	gw       Gateway
	session  *session.Session
	catalog  *cache.Catalog
	oracle   *cache.Oracle
	policy   scheduler.Policy
	events   Publisher
	validate *validator.Validate
	loc      *time.Location
	log      *slog.Logger

	myBookings *cache.Slot[[]models.Booking]
	pending    *cache.Slot[[]models.Booking]
}

// New собирает сервис. loc задаёт зону, в которой показывается и подбирается время броней.
// publisher может быть nil, тогда события не отправляются.
func New(gw Gateway, sess *session.Session, loc *time.Location, publisher Publisher, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		gw:         gw,
		session:    sess,
		catalog:    cache.NewCatalog(gw),
		oracle:     cache.NewOracle(gw, loc),
		policy:     scheduler.DefaultPolicy(),
		events:     publisher,
		validate:   validator.New(),
		loc:        loc,
		log:        log,
		myBookings: cache.NewSlot[[]models.Booking]("my_bookings"),
		pending:    cache.NewSlot[[]models.Booking]("pending_bookings"),
	}
}

// Policy возвращает политику подбора времени.
func (s *Service) Policy() scheduler.Policy {
	return s.policy
}

func (s *Service) check(form any) error {
	if err := s.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &ValidationError{Fields: verrs}
		}
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

// token возвращает токен текущей сессии или ErrNotAuthenticated.
func (s *Service) token() (string, error) {
	token := s.session.Token()
	if token == "" || s.session.User() == nil {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// publish отправляет событие; ошибка публикации не влияет на результат действия.
func (s *Service) publish(ctx context.Context, ev events.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("failed to publish event", slog.String("type", ev.Type), sl.Err(err))
	}
}

// resetUserData забывает данные, привязанные к пользователю.
func (s *Service) resetUserData() {
	s.myBookings.Clear()
	s.pending.Clear()
}

// HandleEvent сбрасывает кэши, затронутые изменением, сделанным другим экземпляром.
func (s *Service) HandleEvent(ev events.Event) {
	switch ev.Type {
	case events.CatalogChanged:
		s.catalog.Clear()
	case events.BookingCreated, events.BookingCanceled, events.BookingStatusChanged:
		if ev.ResourceID != 0 && ev.Date != "" {
			s.oracle.Invalidate(ev.ResourceID, ev.Date)
		} else {
			s.oracle.Reset()
		}
		s.myBookings.Clear()
		s.pending.Clear()
	}
	s.log.Debug("cache invalidated by event", slog.String("type", ev.Type), slog.String("source", ev.Source))
}

// Health возвращает текст статуса бэкенда.
func (s *Service) Health(ctx context.Context) (string, error) {
	return s.gw.Health(ctx)
}

// Oracle возвращает кэш занятости.
func (s *Service) Oracle() *cache.Oracle {
	return s.oracle
}
