package assistant_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/events"
	"github.com/Kirill-j/bookinghub/internal/gateway"
	"github.com/Kirill-j/bookinghub/internal/models"
	"github.com/Kirill-j/bookinghub/internal/scheduler"
	"github.com/Kirill-j/bookinghub/internal/services/assistant"
	"github.com/Kirill-j/bookinghub/internal/session"
	"github.com/Kirill-j/bookinghub/internal/testbackend"
)

const day = "2030-03-15"

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	backend *testbackend.Server
	svc     *assistant.Service
	events  *recordingPublisher
	roomID  uint64
	catID   uint64
}

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)
	backend := testbackend.New(testbackend.WithClock(func() time.Time { return now }))
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	client := gateway.New(srv.URL, 0, noopLogger())
	sess := session.New(session.NewMemoryStore(), client, noopLogger())
	pub := &recordingPublisher{}

	f := &fixture{
		backend: backend,
		svc:     assistant.New(client, sess, time.UTC, pub, noopLogger()),
		events:  pub,
	}
	f.catID = backend.AddCategory("Переговорные")
	f.roomID = backend.AddResource(models.Resource{CategoryID: f.catID, Title: "Комната А", PricePerHour: 500, IsActive: true})
	backend.AddUser("Иван", "ivan@example.com", "secret1", models.RoleUser)
	backend.AddUser("Мария", "maria@example.com", "secret1", models.RoleManager)
	backend.AddUser("Админ", "admin@example.com", "secret1", models.RoleAdmin)
	return f
}

func (f *fixture) login(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := f.svc.Login(context.Background(), models.LoginRequest{Email: email, Password: "secret1"})
	require.NoError(t, err)
	return user
}

func (f *fixture) book(userID uint64, start, end string) uint64 {
	return f.backend.AddBooking(models.Booking{
		ResourceID: f.roomID,
		UserID:     userID,
		StartAt:    day + "T" + start + ":00Z",
		EndAt:      day + "T" + end + ":00Z",
	})
}

func TestService_LoginValidation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		req  models.LoginRequest
	}{
		{name: "empty email", req: models.LoginRequest{Password: "secret1"}},
		{name: "malformed email", req: models.LoginRequest{Email: "ivan", Password: "secret1"}},
		{name: "empty password", req: models.LoginRequest{Email: "ivan@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tt.req)
			var verr *assistant.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
	assert.Zero(t, f.backend.Hits("/api/auth/login"))
}

func TestService_RegisterCompanyBecomesManager(t *testing.T) {
	f := setup(t)

	user, err := f.svc.Register(context.Background(), models.RegisterRequest{
		Name:        " ООО Ромашка ",
		Email:       "office@example.com",
		Password:    "secret1",
		AccountType: "COMPANY",
	})
	require.NoError(t, err)
	assert.Equal(t, "ООО Ромашка", user.Name)
	assert.Equal(t, models.RoleManager, user.Role)
	assert.True(t, f.svc.Capabilities().CanCreateResources)
}

func TestService_MeAfterBackendRejectsToken(t *testing.T) {
	f := setup(t)
	f.login(t, "ivan@example.com")

	f.backend.FailMe(true)
	_, err := f.svc.Me(context.Background())
	assert.ErrorIs(t, err, assistant.ErrNotAuthenticated)
	assert.False(t, f.svc.Capabilities().Authenticated)

	_, err = f.svc.MyBookings(context.Background())
	assert.ErrorIs(t, err, assistant.ErrNotAuthenticated)
}

func TestService_UpdateProfileAndPassword(t *testing.T) {
	f := setup(t)
	f.login(t, "ivan@example.com")
	ctx := context.Background()

	user, err := f.svc.UpdateProfile(ctx, models.UpdateProfileRequest{Name: "Иван Петров", Email: "ivan@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Иван Петров", user.Name)

	err = f.svc.ChangePassword(ctx, models.PasswordChangeForm{
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
		ConfirmPassword: "secret3",
	})
	var verr *assistant.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, f.backend.Hits("/api/auth/password"))

	err = f.svc.ChangePassword(ctx, models.PasswordChangeForm{
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
		ConfirmPassword: "secret2",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx))
	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "ivan@example.com", Password: "secret2"})
	require.NoError(t, err)
}

func TestService_DeleteAccountNeedsPhrase(t *testing.T) {
	f := setup(t)
	user := f.login(t, "ivan@example.com")
	ctx := context.Background()

	err := f.svc.DeleteAccount(ctx, models.DeleteAccountForm{Confirmation: "delete"})
	var verr *assistant.ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, f.svc.DeleteAccount(ctx, models.DeleteAccountForm{Confirmation: models.DeleteAccountPhrase}))
	assert.False(t, f.svc.Capabilities().Authenticated)
	_, found := f.backend.User(user.ID)
	assert.False(t, found)
}

func TestService_CategoryManagementIsAdminOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateCategory(ctx, models.CategoryRequest{Name: "Студии"})
	assert.ErrorIs(t, err, assistant.ErrNotAuthenticated)

	f.login(t, "maria@example.com")
	_, err = f.svc.CreateCategory(ctx, models.CategoryRequest{Name: "Студии"})
	assert.ErrorIs(t, err, assistant.ErrNotAllowed)

	require.NoError(t, f.svc.Logout(ctx))
	f.login(t, "admin@example.com")

	_, err = f.svc.CreateCategory(ctx, models.CategoryRequest{Name: "   "})
	var verr *assistant.ValidationError
	require.ErrorAs(t, err, &verr)

	id, err := f.svc.CreateCategory(ctx, models.CategoryRequest{Name: " Студии "})
	require.NoError(t, err)
	cat, found := f.backend.Category(id)
	require.True(t, found)
	assert.Equal(t, "Студии", cat.Name)

	require.NoError(t, f.svc.RenameCategory(ctx, id, models.CategoryRequest{Name: "Фотостудии"}))
	categories, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Фотостудии", categories[1].Name)

	err = f.svc.DeleteCategory(ctx, f.catID)
	assert.Equal(t, http.StatusBadRequest, gateway.StatusCode(err))
	require.NoError(t, f.svc.DeleteCategory(ctx, id))

	assert.Equal(t, []string{events.CatalogChanged, events.CatalogChanged, events.CatalogChanged}, f.events.types())
}

func TestService_ResourcesFilterAndCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.backend.AddResource(models.Resource{CategoryID: f.catID, Title: "Комната Б", PricePerHour: 300, IsActive: true})

	items, err := f.svc.Resources(ctx, cache.Filter{Sort: cache.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Комната Б", items[0].Title)
	assert.Equal(t, "Переговорные", items[0].CategoryName)

	_, err = f.svc.CreateResource(ctx, models.CreateResourceRequest{CategoryID: f.catID, Title: "Зал"})
	assert.ErrorIs(t, err, assistant.ErrNotAuthenticated)

	f.login(t, "ivan@example.com")
	_, err = f.svc.CreateResource(ctx, models.CreateResourceRequest{CategoryID: f.catID, Title: "Зал"})
	assert.ErrorIs(t, err, assistant.ErrNotAllowed)
	require.NoError(t, f.svc.Logout(ctx))

	f.login(t, "maria@example.com")
	_, err = f.svc.CreateResource(ctx, models.CreateResourceRequest{CategoryID: f.catID, Title: "Зал", PricePerHour: -1})
	var verr *assistant.ValidationError
	require.ErrorAs(t, err, &verr)

	blank := "  "
	_, err = f.svc.CreateResource(ctx, models.CreateResourceRequest{
		CategoryID:   f.catID,
		Title:        " Большой зал ",
		Location:     &blank,
		PricePerHour: 1000,
	})
	require.NoError(t, err)

	mine, err := f.svc.MyResources(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Большой зал", mine[0].Title)
	assert.Nil(t, mine[0].Location)
	assert.Equal(t, "Переговорные", mine[0].CategoryName)

	items, err = f.svc.Resources(ctx, cache.Filter{Query: "зал"})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestService_SuggestSlot(t *testing.T) {
	f := setup(t)
	f.book(1, "08:00", "09:00")
	f.book(1, "10:00", "11:00")

	slot, err := f.svc.SuggestSlot(context.Background(), f.roomID, day, "90")
	require.NoError(t, err)
	assert.Equal(t, assistant.FreeSlot{ResourceID: f.roomID, Date: day, Duration: 90, Start: "11:00", End: "12:30"}, slot)

	slot, err = f.svc.SuggestSlot(context.Background(), f.roomID, day, "abc")
	require.NoError(t, err)
	assert.Equal(t, 60, slot.Duration)
	assert.Equal(t, "09:00", slot.Start)
}

func TestService_SuggestSlotFullDay(t *testing.T) {
	f := setup(t)
	f.book(1, "08:00", "20:00")

	_, err := f.svc.SuggestSlot(context.Background(), f.roomID, day, "30")
	assert.ErrorIs(t, err, scheduler.ErrNoFreeSlot)
}

func TestService_SuggestSlotInvalidDate(t *testing.T) {
	f := setup(t)

	_, err := f.svc.SuggestSlot(context.Background(), f.roomID, "15.03.2030", "60")
	require.Error(t, err)
	assert.Zero(t, f.backend.Hits("/api/resources/"+strconv.FormatUint(f.roomID, 10)+"/bookings"))
}

func TestService_CreateBookingValidation(t *testing.T) {
	f := setup(t)
	f.login(t, "ivan@example.com")

	tests := []struct {
		name  string
		draft models.BookingDraft
	}{
		{name: "missing resource", draft: models.BookingDraft{Date: day, Start: "10:00", End: "11:00"}},
		{name: "bad date", draft: models.BookingDraft{ResourceID: f.roomID, Date: "2030/03/15", Start: "10:00", End: "11:00"}},
		{name: "bad clock", draft: models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "ten", End: "11:00"}},
		{name: "end before start", draft: models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "11:00", End: "10:00"}},
		{name: "end equals start", draft: models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "10:00", End: "10:00"}},
		{name: "too short", draft: models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "10:00", End: "10:29"}},
		{name: "end past midnight", draft: models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "23:00", End: "24:30"}},
		{name: "start at midnight of next day", draft: models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "24:00", End: "24:30"}},
		{name: "hour out of range", draft: models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "10:00", End: "25:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateBooking(context.Background(), tt.draft)
			var verr *assistant.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
	assert.Zero(t, f.backend.Hits("/api/bookings"))
}

func TestService_CreateBookingUntilMidnight(t *testing.T) {
	f := setup(t)
	f.login(t, "ivan@example.com")

	id, err := f.svc.CreateBooking(context.Background(), models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "23:00", End: "24:00"})
	require.NoError(t, err)

	stored, found := f.backend.Booking(id)
	require.True(t, found)
	assert.Equal(t, "2030-03-15T23:00:00Z", stored.StartAt)
	assert.Equal(t, "2030-03-16T00:00:00Z", stored.EndAt)

	occ, ok := f.svc.Oracle().Cached(f.roomID, day)
	require.True(t, ok)
	assert.Equal(t, []scheduler.Interval{{Start: 1380, End: 1440}}, occ.Busy())
}

func TestService_BookingLifecycle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ivan := f.login(t, "ivan@example.com")

	id, err := f.svc.CreateBooking(ctx, models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "10:00", End: "11:30"})
	require.NoError(t, err)

	stored, found := f.backend.Booking(id)
	require.True(t, found)
	assert.Equal(t, ivan.ID, stored.UserID)
	assert.Equal(t, models.BookingPending, stored.Status)

	occ, ok := f.svc.Oracle().Cached(f.roomID, day)
	require.True(t, ok)
	assert.Equal(t, []scheduler.Interval{{Start: 600, End: 690}}, occ.Busy())

	_, err = f.svc.CreateBooking(ctx, models.BookingDraft{ResourceID: f.roomID, Date: day, Start: "11:00", End: "12:00"})
	assert.Equal(t, http.StatusConflict, gateway.StatusCode(err))
	assert.EqualError(t, err, "assistant.CreateBooking: gateway.CreateBooking: Выбранное время уже занято")

	mine, err := f.svc.MyBookings(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Комната А", mine[0].ResourceTitle)
	assert.Equal(t, day, mine[0].Date)
	assert.Equal(t, "10:00", mine[0].Start)
	assert.Equal(t, "11:30", mine[0].End)

	_, err = f.svc.PendingBookings(ctx)
	assert.ErrorIs(t, err, assistant.ErrNotAllowed)

	require.NoError(t, f.svc.CancelBooking(ctx, id))
	stored, _ = f.backend.Booking(id)
	assert.Equal(t, models.BookingCanceled, stored.Status)

	assert.Equal(t, []string{events.BookingCreated, events.BookingCanceled}, f.events.types())
	assert.Equal(t, day, f.events.events[1].Date)
	assert.Equal(t, f.roomID, f.events.events[1].ResourceID)
}

func TestService_Moderation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first := f.book(1, "09:00", "10:00")
	second := f.book(1, "12:00", "13:00")

	f.login(t, "maria@example.com")
	pending, err := f.svc.PendingBookings(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	err = f.svc.SetBookingStatus(ctx, first, models.StatusUpdateRequest{Status: models.BookingCanceled})
	var verr *assistant.ValidationError
	require.ErrorAs(t, err, &verr)

	blank := "   "
	require.NoError(t, f.svc.SetBookingStatus(ctx, first, models.StatusUpdateRequest{Status: models.BookingApproved, ManagerComment: &blank}))
	comment := " занято под ремонт "
	require.NoError(t, f.svc.SetBookingStatus(ctx, second, models.StatusUpdateRequest{Status: models.BookingRejected, ManagerComment: &comment}))

	b, _ := f.backend.Booking(first)
	assert.Equal(t, models.BookingApproved, b.Status)
	assert.Nil(t, b.ManagerComment)
	b, _ = f.backend.Booking(second)
	assert.Equal(t, models.BookingRejected, b.Status)
	require.NotNil(t, b.ManagerComment)
	assert.Equal(t, "занято под ремонт", *b.ManagerComment)

	pending, err = f.svc.PendingBookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = f.svc.SetBookingStatus(ctx, first, models.StatusUpdateRequest{Status: models.BookingRejected})
	assert.Equal(t, http.StatusBadRequest, gateway.StatusCode(err))
}

func TestService_HandleEventInvalidatesOccupancy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Occupancy(ctx, f.roomID, day)
	require.NoError(t, err)
	_, ok := f.svc.Oracle().Cached(f.roomID, day)
	require.True(t, ok)

	f.svc.HandleEvent(events.Event{Type: events.BookingCreated, ResourceID: f.roomID, Date: day})
	_, ok = f.svc.Oracle().Cached(f.roomID, day)
	assert.False(t, ok)
}

func TestService_PublicUserAndHealth(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	maria := f.login(t, "maria@example.com")

	user, err := f.svc.PublicUser(ctx, maria.ID)
	require.NoError(t, err)
	assert.Equal(t, "Мария", user.Name)

	status, err := f.svc.Health(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, status)
}
