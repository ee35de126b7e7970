// Package account реализует HTTP-обработчики сессии и профиля: вход, регистрацию,
// выход, чтение и изменение профиля, смену пароля и удаление аккаунта.
package account

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/Kirill-j/bookinghub/internal/http/request"
	"github.com/Kirill-j/bookinghub/internal/http/response"
	"github.com/Kirill-j/bookinghub/internal/models"
)

// Service описывает операции ассистента над сессией и профилем.
type Service interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.User, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, form models.PasswordChangeForm) error
	DeleteAccount(ctx context.Context, form models.DeleteAccountForm) error
	PublicUser(ctx context.Context, id uint64) (*models.User, error)
}

// Handler обслуживает маршруты /session, /me и /users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request, log *slog.Logger, user *models.User, err error) {
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(user))
}

// Login godoc
// @Summary Вход
// @Description Входит по email и паролю. Токен сохраняется в хранилище сессии ассистента и наружу не отдаётся.
// @Tags Session
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Учётные данные"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверные учётные данные"
// @Router /session/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.Login")

	var req models.LoginRequest
	if err := request.Decode(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	user, err := h.service.Login(r.Context(), req)
	if err == nil {
		log.Info("logged in", slog.Uint64("user_id", user.ID), slog.String("role", string(user.Role)))
	}
	h.user(w, r, log, user, err)
}

// Register godoc
// @Summary Регистрация
// @Tags Session
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Данные нового пользователя"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Router /session/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.Register")

	var req models.RegisterRequest
	if err := request.Decode(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("registered", slog.Uint64("user_id", user.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(user))
}

// Logout завершает сессию.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.Logout")

	if err := h.service.Logout(r.Context()); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK())
}

// Me перечитывает профиль у бэкенда.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.Me")
	user, err := h.service.Me(r.Context())
	h.user(w, r, log, user, err)
}

// UpdateMe меняет имя и email.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.UpdateMe")

	var req models.UpdateProfileRequest
	if err := request.Decode(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	user, err := h.service.UpdateProfile(r.Context(), req)
	h.user(w, r, log, user, err)
}

// ChangePassword меняет пароль.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.ChangePassword")

	var form models.PasswordChangeForm
	if err := request.Decode(r, &form); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.service.ChangePassword(r.Context(), form); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK())
}

// DeleteMe godoc
// @Summary Удаление аккаунта
// @Description Требует фразу подтверждения DELETE. После удаления сессия завершается.
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body models.DeleteAccountForm true "Подтверждение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Фраза не совпала"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /me [delete]
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.DeleteMe")

	var form models.DeleteAccountForm
	if err := request.Decode(r, &form); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.service.DeleteAccount(r.Context(), form); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("account deleted")
	render.JSON(w, r, response.OK())
}

// PublicUser возвращает публичный профиль пользователя по id.
func (h *Handler) PublicUser(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.account.PublicUser")

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	user, err := h.service.PublicUser(r.Context(), id)
	h.user(w, r, log, user, err)
}
