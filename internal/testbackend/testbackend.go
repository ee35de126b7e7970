// Package testbackend — REST-бэкенд бронирований в памяти.
//
// Повторяет контракт настоящего сервиса: пути, коды ответов, текстовые тела ошибок,
// null вместо пустых списков. Используется в тестах клиента и в демо-режиме ассистента.
package testbackend

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kirill-j/bookinghub/internal/lib/jwt"
	"github.com/Kirill-j/bookinghub/internal/lib/password"
	"github.com/Kirill-j/bookinghub/internal/models"
)

type account struct {
	models.User
	passwordHash string
	createdAt    time.Time
}

// Server хранит пользователей, каталог и брони в памяти.
type Server struct {
	mu sync.Mutex

	tokens *jwt.Maker
	loc    *time.Location
	now    func() time.Time
	cost   int

	users      map[uint64]*account
	categories map[uint64]*models.Category
	resources  map[uint64]*models.Resource
	bookings   map[uint64]*models.Booking
	nextID     uint64

	failMe atomic.Bool
	hits   sync.Map
}

// Option настраивает Server.
type Option func(*Server)

// WithLocation задаёт зону, в которой разбираются метки без смещения. По умолчанию UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) { s.loc = loc }
}

// WithClock подменяет текущее время для проверки броней в прошлом.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New создаёт пустой бэкенд.
func New(opts ...Option) *Server {
	s := &Server{
		tokens:     jwt.NewMaker("test-backend-secret", time.Hour),
		loc:        time.UTC,
		now:        time.Now,
		cost:       bcrypt.MinCost,
		users:      make(map[uint64]*account),
		categories: make(map[uint64]*models.Category),
		resources:  make(map[uint64]*models.Resource),
		bookings:   make(map[uint64]*models.Booking),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler возвращает роутер с маршрутами /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.countHits)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.me)
				r.Patch("/me", s.updateMe)
				r.Delete("/me", s.deleteMe)
				r.Post("/password", s.changePassword)
			})
		})

		r.Get("/categories", s.listCategories)
		r.With(s.requireAuth, requireRoles(models.RoleAdmin)).Post("/categories", s.createCategory)
		r.With(s.requireAuth, requireRoles(models.RoleAdmin)).Patch("/categories/{id}", s.renameCategory)
		r.With(s.requireAuth, requireRoles(models.RoleAdmin)).Delete("/categories/{id}", s.deleteCategory)

		r.Get("/resources", s.listResources)
		r.With(s.requireAuth).Get("/resources/my", s.myResources)
		r.With(s.requireAuth, requireRoles(models.RoleManager, models.RoleAdmin)).Post("/resources", s.createResource)
		r.Get("/resources/{id}/bookings", s.resourceBookings)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/bookings/my", s.myBookings)
			r.Post("/bookings", s.createBooking)
			r.Post("/bookings/{id}/cancel", s.cancelBooking)
			r.With(requireRoles(models.RoleManager, models.RoleAdmin)).Get("/bookings/pending", s.pendingBookings)
			r.With(requireRoles(models.RoleManager, models.RoleAdmin)).Patch("/bookings/{id}/status", s.setStatus)
		})

		r.Get("/users/{id}", s.publicUser)
	})
	return r
}

// FailMe заставляет GET /api/auth/me отвечать 401 для любого токена.
func (s *Server) FailMe(fail bool) {
	s.failMe.Store(fail)
}

// Hits возвращает число запросов к пути path, например "/api/auth/me".
func (s *Server) Hits(path string) int {
	v, ok := s.hits.Load(path)
	if !ok {
		return 0
	}
	return int(v.(*atomic.Int64).Load())
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, _ := s.hits.LoadOrStore(r.URL.Path, new(atomic.Int64))
		v.(*atomic.Int64).Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) id() uint64 {
	s.nextID++
	return s.nextID
}

// AddUser регистрирует пользователя напрямую и возвращает его профиль.
func (s *Server) AddUser(name, email, pass string, role models.Role) models.User {
	hash, err := password.Hash(pass, s.cost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := &account{
		User:         models.User{ID: s.id(), Name: name, Email: email, Role: role},
		passwordHash: hash,
		createdAt:    s.now(),
	}
	s.users[acc.ID] = acc
	return acc.User
}

// Token выпускает токен для пользователя, минуя вход.
func (s *Server) Token(user models.User) string {
	token, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		panic(err)
	}
	return token
}

// AddCategory добавляет категорию и возвращает её идентификатор.
func (s *Server) AddCategory(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c := &models.Category{ID: s.id(), Name: name, CreatedAt: &now}
	s.categories[c.ID] = c
	return c.ID
}

// AddResource добавляет ресурс; ID из аргумента игнорируется.
func (s *Server) AddResource(res models.Resource) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	res.ID = s.id()
	now := s.now()
	res.CreatedAt = &now
	s.resources[res.ID] = &res
	return res.ID
}

// AddBooking добавляет бронь без проверок; ID из аргумента игнорируется.
func (s *Server) AddBooking(b models.Booking) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.id()
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	s.bookings[b.ID] = &b
	return b.ID
}

// Booking возвращает копию брони.
func (s *Server) Booking(id uint64) (models.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, false
	}
	return *b, true
}

// Category возвращает копию категории.
func (s *Server) Category(id uint64) (models.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return models.Category{}, false
	}
	return *c, true
}

// User возвращает профиль пользователя.
func (s *Server) User(id uint64) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return acc.User, true
}
