// Package jwt выпускает и проверяет токены доступа тестового бэкенда.
//
// Клиент бронирования сам токены не разбирает: для него это непрозрачная строка.
// Пакет нужен встроенному бэкенду, на котором прогоняются тесты и демо-режим.
package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается для поддельного, просроченного или испорченного токена.
var ErrInvalidToken = errors.New("invalid token")

// Claims данные, зашитые в токен.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID возвращает идентификатор пользователя из поля sub.
func (c *Claims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// Maker подписывает токены секретом HS256 и задаёт им время жизни.
type Maker struct {
	secret []byte
	ttl    time.Duration
}

// NewMaker создаёт Maker.
func NewMaker(secret string, ttl time.Duration) *Maker {
	return &Maker{secret: []byte(secret), ttl: ttl}
}

// Generate выпускает токен для пользователя с заданной ролью.
func (m *Maker) Generate(userID uint64, role string) (string, error) {
	const op = "jwt.Generate"

	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// Parse проверяет подпись и срок действия токена.
func (m *Maker) Parse(raw string) (*Claims, error) {
	const op = "jwt.Parse"

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
