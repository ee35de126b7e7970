// Package storage хранит состояние клиента в PostgreSQL: пары ключ-значение
// в таблице client_state. Сейчас там лежит только токен доступа.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Kirill-j/bookinghub/internal/migrations"
)

// Storage инкапсулирует соединение с PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New подключается к PostgreSQL и применяет миграции.
func New(ctx context.Context, connectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", connectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{DB: db}, nil
}

// GetState возвращает значение по ключу. false означает, что ключа нет.
func (s *Storage) GetState(ctx context.Context, key string) (string, bool, error) {
	const op = "storage.GetState"

	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM client_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

// PutState сохраняет значение, перезаписывая прежнее.
func (s *Storage) PutState(ctx context.Context, key, value string) error {
	const op = "storage.PutState"

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO client_state (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteState удаляет ключ. Удаление отсутствующего ключа не ошибка.
func (s *Storage) DeleteState(ctx context.Context, key string) error {
	const op = "storage.DeleteState"

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM client_state WHERE key = $1`, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}
