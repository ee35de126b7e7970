package session_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kirill-j/bookinghub/internal/authz"
	"github.com/Kirill-j/bookinghub/internal/gateway"
	"github.com/Kirill-j/bookinghub/internal/models"
	"github.com/Kirill-j/bookinghub/internal/session"
	"github.com/Kirill-j/bookinghub/internal/testbackend"
)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T) (*gateway.Client, *testbackend.Server) {
	t.Helper()
	backend := testbackend.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return gateway.New(srv.URL, 0, noopLogger()), backend
}

func TestSession_LoginStoresTokenAndProfile(t *testing.T) {
	client, backend := setup(t)
	backend.AddUser("Мария", "maria@example.com", "secret1", models.RoleManager)
	store := session.NewMemoryStore()
	s := session.New(store, client, noopLogger())
	ctx := context.Background()

	assert.Equal(t, authz.Capabilities{}, s.Capabilities())

	user, err := s.Login(ctx, models.LoginRequest{Email: "maria@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Мария", user.Name)

	token, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Token(), token)
	assert.True(t, s.Capabilities().CanModerateBookings)
	assert.False(t, s.Capabilities().CanManageCategories)
}

func TestSession_LoginFailureKeepsAnonymous(t *testing.T) {
	client, _ := setup(t)
	store := session.NewMemoryStore()
	s := session.New(store, client, noopLogger())

	_, err := s.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, gateway.IsUnauthorized(err))
	assert.Nil(t, s.User())

	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestSession_Register(t *testing.T) {
	client, _ := setup(t)
	s := session.New(session.NewMemoryStore(), client, noopLogger())

	user, err := s.Register(context.Background(), models.RegisterRequest{
		Name: "Олег", Email: "oleg@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, s.Token())
	assert.True(t, s.Capabilities().Authenticated)
	assert.False(t, s.Capabilities().CanCreateResources)
}

func TestSession_RestoreFromStore(t *testing.T) {
	client, backend := setup(t)
	u := backend.AddUser("Мария", "maria@example.com", "secret1", models.RoleAdmin)
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), backend.Token(u)))

	s := session.New(store, client, noopLogger())
	require.NoError(t, s.Restore(context.Background()))

	require.NotNil(t, s.User())
	assert.Equal(t, u, *s.User())
	assert.True(t, s.Capabilities().CanManageCategories)
}

func TestSession_RestoreWithoutToken(t *testing.T) {
	client, backend := setup(t)
	s := session.New(session.NewMemoryStore(), client, noopLogger())

	require.NoError(t, s.Restore(context.Background()))
	assert.Nil(t, s.User())
	assert.Equal(t, 0, backend.Hits("/api/auth/me"))
}

func TestSession_FailedMeLogsOut(t *testing.T) {
	client, backend := setup(t)
	backend.AddUser("Мария", "maria@example.com", "secret1", models.RoleManager)
	store := session.NewMemoryStore()
	s := session.New(store, client, noopLogger())
	ctx := context.Background()

	_, err := s.Login(ctx, models.LoginRequest{Email: "maria@example.com", Password: "secret1"})
	require.NoError(t, err)

	backend.FailMe(true)
	user, err := s.Refresh(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	assert.Equal(t, authz.Capabilities{}, s.Capabilities())

	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestSession_RestoreWithRejectedTokenLogsOut(t *testing.T) {
	client, _ := setup(t)
	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "forged-token"))

	s := session.New(store, client, noopLogger())
	require.NoError(t, s.Restore(context.Background()))
	assert.Nil(t, s.User())

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestSession_RefreshCanceledKeepsSession(t *testing.T) {
	client, backend := setup(t)
	backend.AddUser("Мария", "maria@example.com", "secret1", models.RoleManager)
	store := session.NewMemoryStore()
	s := session.New(store, client, noopLogger())

	_, err := s.Login(context.Background(), models.LoginRequest{Email: "maria@example.com", Password: "secret1"})
	require.NoError(t, err)
	token := s.Token()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	user, err := s.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, user)

	assert.Equal(t, token, s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "Мария", s.User().Name)

	stored, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, token, stored)
}

func TestSession_RestoreWithUnreachableBackendKeepsToken(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "saved-token"))

	s := session.New(store, gateway.New(baseURL, 0, noopLogger()), noopLogger())
	err := s.Restore(context.Background())
	require.Error(t, err)

	assert.Equal(t, "saved-token", s.Token())
	assert.Nil(t, s.User())
	stored, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "saved-token", stored)
}

type stubBackend struct {
	user *models.User
	err  error
}

func (b *stubBackend) Login(context.Context, models.LoginRequest) (*models.AuthResult, error) {
	return &models.AuthResult{AccessToken: "stub-token", User: *b.user}, nil
}

func (b *stubBackend) Register(context.Context, models.RegisterRequest) (*models.AuthResult, error) {
	return nil, errors.New("not implemented")
}

func (b *stubBackend) Me(context.Context, string) (*models.User, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.user, nil
}

func TestSession_RefreshErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantLogout bool
	}{
		{name: "token rejected", err: &gateway.StatusError{Code: http.StatusUnauthorized, Body: "Неверный токен"}, wantLogout: true},
		{name: "backend failure", err: &gateway.StatusError{Code: http.StatusInternalServerError, Body: "internal"}},
		{name: "forbidden", err: &gateway.StatusError{Code: http.StatusForbidden, Body: "Доступ запрещён"}},
		{name: "network error", err: &url.Error{Op: "Get", URL: "http://backend/api/auth/me", Err: errors.New("connection refused")}},
		{name: "deadline", err: context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &stubBackend{user: &models.User{ID: 7, Name: "Мария", Role: models.RoleManager}}
			store := session.NewMemoryStore()
			s := session.New(store, backend, noopLogger())
			ctx := context.Background()

			_, err := s.Login(ctx, models.LoginRequest{Email: "maria@example.com", Password: "secret1"})
			require.NoError(t, err)

			backend.err = tt.err
			user, err := s.Refresh(ctx)
			assert.Nil(t, user)

			stored, storeErr := store.Get(ctx)
			if tt.wantLogout {
				assert.NoError(t, err)
				assert.Empty(t, s.Token())
				assert.Nil(t, s.User())
				assert.ErrorIs(t, storeErr, session.ErrNoToken)
				return
			}
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, "stub-token", s.Token())
			require.NotNil(t, s.User())
			assert.Equal(t, uint64(7), s.User().ID)
			require.NoError(t, storeErr)
			assert.Equal(t, "stub-token", stored)
		})
	}
}

func TestSession_Logout(t *testing.T) {
	client, backend := setup(t)
	backend.AddUser("Мария", "maria@example.com", "secret1", models.RoleUser)
	store := session.NewMemoryStore()
	s := session.New(store, client, noopLogger())
	ctx := context.Background()

	_, err := s.Login(ctx, models.LoginRequest{Email: "maria@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	assert.Nil(t, s.User())
	assert.Empty(t, s.Token())
	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, session.ErrNoToken)

	user, err := s.Refresh(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

type failingStore struct{ session.MemoryStore }

func (f *failingStore) Get(context.Context) (string, error) {
	return "", errors.New("store unavailable")
}

func TestSession_RestoreStoreError(t *testing.T) {
	client, _ := setup(t)
	s := session.New(&failingStore{}, client, noopLogger())
	assert.ErrorContains(t, s.Restore(context.Background()), "store unavailable")
}
