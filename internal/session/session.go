// Package session хранит токен доступа и кэшированный профиль текущего пользователя.
//
// Session создаётся явно в точке сборки приложения и передаётся
// тем, кому нужен токен. Профиль заменяется только целиком: при входе, регистрации
// и обновлении через GET /api/auth/me. Сессию завершает только ответ 401 на этот запрос,
// остальные ошибки оставляют токен и профиль как есть.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Kirill-j/bookinghub/internal/authz"
	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/gateway"
	"github.com/Kirill-j/bookinghub/internal/lib/sl"
	"github.com/Kirill-j/bookinghub/internal/models"
)

// Backend — операции бэкенда, которые нужны сессии.
type Backend interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

// Session — сессия пользователя ассистента.
type Session struct {
	store   Store
	backend Backend
	log     *slog.Logger

	mu      sync.Mutex
	token   string
	profile *cache.Slot[*models.User]
}

// New создаёт анонимную сессию. Сохранённый токен подхватывается вызовом Restore.
func New(store Store, backend Backend, log *slog.Logger) *Session {
	return &Session{
		store:   store,
		backend: backend,
		log:     log,
		profile: cache.NewSlot[*models.User]("profile"),
	}
}

// Restore читает сохранённый токен и обновляет по нему профиль.
// Отсутствие токена не ошибка: сессия остаётся анонимной. Если бэкенд недоступен,
// токен остаётся в сессии и хранилище, а ошибка возвращается вызывающему.
func (s *Session) Restore(ctx context.Context) error {
	const op = "session.Restore"

	token, err := s.store.Get(ctx)
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	_, err = s.Refresh(ctx)
	return err
}

// Login входит по email и паролю, сохраняет токен и профиль.
func (s *Session) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	const op = "session.Login"

	res, err := s.backend.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.begin(ctx, res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.User(), nil
}

// Register регистрирует пользователя и сразу начинает сессию.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "session.Register"

	res, err := s.backend.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.begin(ctx, res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.User(), nil
}

func (s *Session) begin(ctx context.Context, res *models.AuthResult) error {
	if err := s.store.Set(ctx, res.AccessToken); err != nil {
		return err
	}
	user := res.User

	s.mu.Lock()
	s.token = res.AccessToken
	s.mu.Unlock()
	s.profile.Set(&user)

	s.log.Info("session started", slog.Uint64("user_id", user.ID), slog.String("role", string(user.Role)))
	return nil
}

// Refresh перечитывает профиль по текущему токену.
// Если токена нет, возвращает nil. Если бэкенд отклонил токен (401), сессия
// завершается, а метод возвращает nil без ошибки. Прочие ошибки (отмена ctx,
// сбой сети, другие статусы) возвращаются, токен и кэшированный профиль не меняются.
func (s *Session) Refresh(ctx context.Context) (*models.User, error) {
	const op = "session.Refresh"

	token := s.Token()
	if token == "" {
		s.profile.Clear()
		return nil, nil
	}

	user, err := s.profile.Refresh(ctx, func(ctx context.Context) (*models.User, error) {
		return s.backend.Me(ctx, token)
	})
	if errors.Is(err, cache.ErrSuperseded) {
		return s.User(), nil
	}
	if gateway.IsUnauthorized(err) {
		s.log.Warn("token rejected by backend, logging out", sl.Op(op), sl.Err(err))
		if err := s.endIfCurrent(ctx, token); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return clone(user), nil
}

// Logout забывает токен и профиль.
func (s *Session) Logout(ctx context.Context) error {
	const op = "session.Logout"

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	s.profile.Clear()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// endIfCurrent завершает сессию, только если за время запроса не начали новую.
func (s *Session) endIfCurrent(ctx context.Context, token string) error {
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		return nil
	}
	s.token = ""
	s.mu.Unlock()
	s.profile.Clear()
	return s.store.Clear(ctx)
}

// Token возвращает текущий токен или пустую строку.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User возвращает копию кэшированного профиля или nil для анонимной сессии.
func (s *Session) User() *models.User {
	user, _ := s.profile.Get()
	return clone(user)
}

// Capabilities возвращает действия, доступные текущему пользователю.
func (s *Session) Capabilities() authz.Capabilities {
	return authz.For(s.User())
}

func clone(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
