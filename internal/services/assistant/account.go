package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kirill-j/bookinghub/internal/authz"
	"github.com/Kirill-j/bookinghub/internal/models"
)

// Capabilities возвращает действия, доступные текущему пользователю.
func (s *Service) Capabilities() authz.Capabilities {
	return s.session.Capabilities()
}

// Login входит по email и паролю.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	const op = "assistant.Login"

	req.Email = strings.TrimSpace(req.Email)
	if err := s.check(req); err != nil {
		return nil, err
	}
	user, err := s.session.Login(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.resetUserData()
	return user, nil
}

// Register регистрирует пользователя и сразу входит.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "assistant.Register"

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.AccountType = strings.TrimSpace(req.AccountType)
	if err := s.check(req); err != nil {
		return nil, err
	}
	user, err := s.session.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.resetUserData()
	return user, nil
}

// Logout завершает сессию.
func (s *Service) Logout(ctx context.Context) error {
	const op = "assistant.Logout"

	s.resetUserData()
	if err := s.session.Logout(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Me перечитывает профиль. Если бэкенд не подтвердил токен, сессия уже завершена
// и возвращается ErrNotAuthenticated.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	const op = "assistant.Me"

	user, err := s.session.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		s.resetUserData()
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// UpdateProfile меняет имя и email, затем перечитывает профиль.
func (s *Service) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	const op = "assistant.UpdateProfile"

	token, err := s.token()
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.check(req); err != nil {
		return nil, err
	}
	if err := s.gw.UpdateMe(ctx, token, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Me(ctx)
}

// ChangePassword меняет пароль. Подтверждение сверяется на клиенте.
func (s *Service) ChangePassword(ctx context.Context, form models.PasswordChangeForm) error {
	const op = "assistant.ChangePassword"

	token, err := s.token()
	if err != nil {
		return err
	}
	if err := s.check(form); err != nil {
		return err
	}
	req := models.ChangePasswordRequest{CurrentPassword: form.CurrentPassword, NewPassword: form.NewPassword}
	if err := s.gw.ChangePassword(ctx, token, req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAccount удаляет аккаунт после ввода фразы подтверждения и завершает сессию.
func (s *Service) DeleteAccount(ctx context.Context, form models.DeleteAccountForm) error {
	const op = "assistant.DeleteAccount"

	token, err := s.token()
	if err != nil {
		return err
	}
	form.Confirmation = strings.TrimSpace(form.Confirmation)
	if err := s.check(form); err != nil {
		return err
	}
	if err := s.gw.DeleteMe(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.Logout(ctx)
}

// PublicUser возвращает публичный профиль пользователя, например владельца ресурса.
func (s *Service) PublicUser(ctx context.Context, id uint64) (*models.User, error) {
	const op = "assistant.PublicUser"

	user, err := s.gw.PublicUser(ctx, s.session.Token(), id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
