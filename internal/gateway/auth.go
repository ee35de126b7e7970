package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Kirill-j/bookinghub/internal/models"
)

// Message возвращает текст ошибки для пользователя: тело ответа бэкенда,
// если ошибка пришла от него, иначе текст самой ошибки.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Error()
	}
	return err.Error()
}

// Login обменивает email и пароль на токен и профиль.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	const op = "gateway.Login"

	var res models.AuthResult
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", "/api/auth/login", "", req, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &res, nil
}

// Register создаёт аккаунт и сразу возвращает токен и профиль.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	const op = "gateway.Register"

	var res models.AuthResult
	if err := c.call(ctx, http.MethodPost, "/api/auth/register", "/api/auth/register", "", req, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &res, nil
}

// Me возвращает профиль владельца токена.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	const op = "gateway.Me"

	var user models.User
	if err := c.call(ctx, http.MethodGet, "/api/auth/me", "/api/auth/me", token, nil, &user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// UpdateMe меняет имя и email текущего пользователя.
func (c *Client) UpdateMe(ctx context.Context, token string, req models.UpdateProfileRequest) error {
	const op = "gateway.UpdateMe"

	if err := c.call(ctx, http.MethodPatch, "/api/auth/me", "/api/auth/me", token, req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteMe удаляет аккаунт текущего пользователя.
func (c *Client) DeleteMe(ctx context.Context, token string) error {
	const op = "gateway.DeleteMe"

	if err := c.call(ctx, http.MethodDelete, "/api/auth/me", "/api/auth/me", token, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChangePassword меняет пароль; бэкенд проверяет текущий пароль сам.
func (c *Client) ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) error {
	const op = "gateway.ChangePassword"

	if err := c.call(ctx, http.MethodPost, "/api/auth/password", "/api/auth/password", token, req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PublicUser возвращает публичный профиль пользователя.
func (c *Client) PublicUser(ctx context.Context, token string, id uint64) (*models.User, error) {
	const op = "gateway.PublicUser"

	var user models.User
	path := "/api/users/" + strconv.FormatUint(id, 10)
	if err := c.call(ctx, http.MethodGet, path, "/api/users/:id", token, nil, &user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}
