package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Kirill-j/bookinghub/internal/models"
)

// Categories возвращает все категории.
func (c *Client) Categories(ctx context.Context, token string) ([]models.Category, error) {
	const op = "gateway.Categories"

	items := []models.Category{}
	if err := c.call(ctx, http.MethodGet, "/api/categories", "/api/categories", token, nil, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// CreateCategory создаёт категорию и возвращает её идентификатор.
func (c *Client) CreateCategory(ctx context.Context, token string, req models.CategoryRequest) (uint64, error) {
	const op = "gateway.CreateCategory"

	var created models.Created
	if err := c.call(ctx, http.MethodPost, "/api/categories", "/api/categories", token, req, &created); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return created.ID, nil
}

// RenameCategory переименовывает категорию.
func (c *Client) RenameCategory(ctx context.Context, token string, id uint64, req models.CategoryRequest) error {
	const op = "gateway.RenameCategory"

	path := "/api/categories/" + strconv.FormatUint(id, 10)
	if err := c.call(ctx, http.MethodPatch, path, "/api/categories/:id", token, req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteCategory удаляет категорию. Бэкенд не даст удалить категорию с ресурсами.
func (c *Client) DeleteCategory(ctx context.Context, token string, id uint64) error {
	const op = "gateway.DeleteCategory"

	path := "/api/categories/" + strconv.FormatUint(id, 10)
	if err := c.call(ctx, http.MethodDelete, path, "/api/categories/:id", token, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Resources возвращает каталог ресурсов.
func (c *Client) Resources(ctx context.Context, token string) ([]models.Resource, error) {
	const op = "gateway.Resources"

	items := []models.Resource{}
	if err := c.call(ctx, http.MethodGet, "/api/resources", "/api/resources", token, nil, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// MyResources возвращает ресурсы, размещённые текущим пользователем.
func (c *Client) MyResources(ctx context.Context, token string) ([]models.Resource, error) {
	const op = "gateway.MyResources"

	items := []models.Resource{}
	if err := c.call(ctx, http.MethodGet, "/api/resources/my", "/api/resources/my", token, nil, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// CreateResource размещает ресурс и возвращает его идентификатор.
func (c *Client) CreateResource(ctx context.Context, token string, req models.CreateResourceRequest) (uint64, error) {
	const op = "gateway.CreateResource"

	var created models.Created
	if err := c.call(ctx, http.MethodPost, "/api/resources", "/api/resources", token, req, &created); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return created.ID, nil
}
