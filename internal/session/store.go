package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/storage"
)

// ErrNoToken возвращается из Store.Get, если токен не сохранён.
var ErrNoToken = errors.New("no access token stored")

// DefaultKey — ключ, под которым хранится токен.
const DefaultKey = "accessToken"

// Store хранит токен доступа между запусками.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryStore хранит токен в памяти процесса.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore создаёт пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// RedisStore хранит токен в redis под ключом key без срока жизни.
type RedisStore struct {
	cache *cache.Redis
	key   string
}

// NewRedisStore создаёт хранилище поверх redis-кэша.
func NewRedisStore(c *cache.Redis, key string) *RedisStore {
	if key == "" {
		key = DefaultKey
	}
	return &RedisStore{cache: c, key: key}
}

func (r *RedisStore) Get(ctx context.Context) (string, error) {
	const op = "session.RedisStore.Get"

	var token string
	found, err := r.cache.Get(ctx, r.key, &token)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !found || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (r *RedisStore) Set(ctx context.Context, token string) error {
	const op = "session.RedisStore.Set"

	if err := r.cache.Set(ctx, r.key, token, 0); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	const op = "session.RedisStore.Clear"

	if err := r.cache.Invalidate(ctx, r.key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PostgresStore хранит токен в таблице client_state.
type PostgresStore struct {
	storage *storage.Storage
	key     string
}

// NewPostgresStore создаёт хранилище поверх PostgreSQL.
func NewPostgresStore(s *storage.Storage, key string) *PostgresStore {
	if key == "" {
		key = DefaultKey
	}
	return &PostgresStore{storage: s, key: key}
}

func (p *PostgresStore) Get(ctx context.Context) (string, error) {
	const op = "session.PostgresStore.Get"

	token, found, err := p.storage.GetState(ctx, p.key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !found || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

func (p *PostgresStore) Set(ctx context.Context, token string) error {
	const op = "session.PostgresStore.Set"

	if err := p.storage.PutState(ctx, p.key, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	const op = "session.PostgresStore.Clear"

	if err := p.storage.DeleteState(ctx, p.key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
