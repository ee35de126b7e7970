// Package catalog реализует HTTP-обработчики каталога: категории и ресурсы,
// включая поиск, фильтр по цене и сортировку.
package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/http/request"
	"github.com/Kirill-j/bookinghub/internal/http/response"
	"github.com/Kirill-j/bookinghub/internal/models"
	"github.com/Kirill-j/bookinghub/internal/services/assistant"
)

// Service описывает операции ассистента над каталогом.
type Service interface {
	Categories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, req models.CategoryRequest) (uint64, error)
	RenameCategory(ctx context.Context, id uint64, req models.CategoryRequest) error
	DeleteCategory(ctx context.Context, id uint64) error
	Resources(ctx context.Context, f cache.Filter) ([]assistant.ResourceView, error)
	MyResources(ctx context.Context) ([]assistant.ResourceView, error)
	CreateResource(ctx context.Context, req models.CreateResourceRequest) (uint64, error)
}

// Handler обслуживает маршруты /catalog.
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

func created(w http.ResponseWriter, r *http.Request, id uint64) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(models.Created{ID: id}))
}

// Categories возвращает список категорий.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.Categories")

	items, err := h.service.Categories(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

// CreateCategory godoc
// @Summary Создать категорию
// @Description Доступно только администратору.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body models.CategoryRequest true "Название"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Пустое название"
// @Failure 403 {object} response.ErrorResponse "Недоступно для роли"
// @Router /catalog/categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.CreateCategory")

	var req models.CategoryRequest
	if err := request.Decode(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	id, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("category created", slog.Uint64("id", id))
	created(w, r, id)
}

// RenameCategory переименовывает категорию.
func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.RenameCategory")

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	var req models.CategoryRequest
	if err := request.Decode(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.service.RenameCategory(r.Context(), id, req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK())
}

// DeleteCategory удаляет категорию без привязанных ресурсов.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.DeleteCategory")

	id, err := request.ID(r, "id")
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OK())
}

// Resources godoc
// @Summary Каталог ресурсов
// @Description Поиск по названию и локации, фильтр по категории и цене, сортировка popular | price_asc | price_desc.
// @Tags Catalog
// @Produce json
// @Param q query string false "Строка поиска"
// @Param categoryId query int false "Категория"
// @Param minPrice query int false "Минимальная цена за час"
// @Param maxPrice query int false "Максимальная цена за час"
// @Param sort query string false "Сортировка"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный параметр"
// @Router /catalog/resources [get]
func (h *Handler) Resources(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.Resources")

	f, err := parseFilter(r)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	items, err := h.service.Resources(r.Context(), f)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

func parseFilter(r *http.Request) (cache.Filter, error) {
	q := r.URL.Query()
	f := cache.Filter{Query: q.Get("q"), Sort: q.Get("sort")}

	if raw := q.Get("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return cache.Filter{}, request.ErrBadQuery
		}
		f.CategoryID = id
	}
	var err error
	if f.MinPrice, err = request.OptionalInt(r, "minPrice"); err != nil {
		return cache.Filter{}, err
	}
	if f.MaxPrice, err = request.OptionalInt(r, "maxPrice"); err != nil {
		return cache.Filter{}, err
	}
	return f, nil
}

// MyResources возвращает ресурсы текущего пользователя.
func (h *Handler) MyResources(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.MyResources")

	items, err := h.service.MyResources(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	render.JSON(w, r, response.OKWithData(items))
}

// CreateResource размещает ресурс.
func (h *Handler) CreateResource(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.catalog.CreateResource")

	var req models.CreateResourceRequest
	if err := request.Decode(r, &req); err != nil {
		response.Fail(w, r, log, err)
		return
	}
	id, err := h.service.CreateResource(r.Context(), req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	log.Info("resource created", slog.Uint64("id", id))
	created(w, r, id)
}
