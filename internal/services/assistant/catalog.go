package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kirill-j/bookinghub/internal/cache"
	"github.com/Kirill-j/bookinghub/internal/events"
	"github.com/Kirill-j/bookinghub/internal/lib/sl"
	"github.com/Kirill-j/bookinghub/internal/models"
)

// ResourceView — ресурс каталога с именем категории.
type ResourceView struct {
	models.Resource
	CategoryName string `json:"categoryName"`
}

func (s *Service) views(items []models.Resource) []ResourceView {
	out := make([]ResourceView, 0, len(items))
	for _, r := range items {
		out = append(out, ResourceView{Resource: r, CategoryName: s.catalog.CategoryName(r.CategoryID)})
	}
	return out
}

// Categories перезагружает и возвращает список категорий.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	const op = "assistant.Categories"

	if err := s.catalog.RefreshCategories(ctx, s.session.Token()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.catalog.Categories(), nil
}

// Resources перезагружает каталог и возвращает ресурсы, отобранные фильтром.
func (s *Service) Resources(ctx context.Context, f cache.Filter) ([]ResourceView, error) {
	const op = "assistant.Resources"

	if err := s.catalog.Refresh(ctx, s.session.Token()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.views(s.catalog.Filter(f)), nil
}

// MyResources возвращает ресурсы, размещённые текущим пользователем.
func (s *Service) MyResources(ctx context.Context) ([]ResourceView, error) {
	const op = "assistant.MyResources"

	token, err := s.token()
	if err != nil {
		return nil, err
	}
	if !s.catalog.Loaded() {
		if err := s.catalog.RefreshCategories(ctx, token); err != nil {
			s.log.Warn("categories unavailable, using fallback names", sl.Err(err))
		}
	}
	items, err := s.gw.MyResources(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.views(items), nil
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// CreateResource размещает ресурс. Доступно менеджерам и администраторам.
func (s *Service) CreateResource(ctx context.Context, req models.CreateResourceRequest) (uint64, error) {
	const op = "assistant.CreateResource"

	token, err := s.token()
	if err != nil {
		return 0, err
	}
	if !s.Capabilities().CanCreateResources {
		return 0, ErrNotAllowed
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = optional(req.Description)
	req.Location = optional(req.Location)
	if err := s.check(req); err != nil {
		return 0, err
	}

	id, err := s.gw.CreateResource(ctx, token, req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.afterCatalogChange(ctx, token, false)
	return id, nil
}

// CreateCategory создаёт категорию. Доступно администраторам.
func (s *Service) CreateCategory(ctx context.Context, req models.CategoryRequest) (uint64, error) {
	const op = "assistant.CreateCategory"

	token, err := s.categoryAdmin(&req)
	if err != nil {
		return 0, err
	}
	id, err := s.gw.CreateCategory(ctx, token, req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.afterCatalogChange(ctx, token, true)
	return id, nil
}

// RenameCategory переименовывает категорию. Доступно администраторам.
func (s *Service) RenameCategory(ctx context.Context, id uint64, req models.CategoryRequest) error {
	const op = "assistant.RenameCategory"

	token, err := s.categoryAdmin(&req)
	if err != nil {
		return err
	}
	if err := s.gw.RenameCategory(ctx, token, id, req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.afterCatalogChange(ctx, token, true)
	return nil
}

// DeleteCategory удаляет категорию. Доступно администраторам.
func (s *Service) DeleteCategory(ctx context.Context, id uint64) error {
	const op = "assistant.DeleteCategory"

	token, err := s.token()
	if err != nil {
		return err
	}
	if !s.Capabilities().CanManageCategories {
		return ErrNotAllowed
	}
	if err := s.gw.DeleteCategory(ctx, token, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.afterCatalogChange(ctx, token, true)
	return nil
}

func (s *Service) categoryAdmin(req *models.CategoryRequest) (string, error) {
	token, err := s.token()
	if err != nil {
		return "", err
	}
	if !s.Capabilities().CanManageCategories {
		return "", ErrNotAllowed
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.check(*req); err != nil {
		return "", err
	}
	return token, nil
}

// afterCatalogChange перечитывает каталог после мутации и оповещает другие экземпляры.
// Ошибка перечитывания только логируется: мутация на бэкенде уже прошла.
func (s *Service) afterCatalogChange(ctx context.Context, token string, categories bool) {
	var err error
	if categories {
		err = s.catalog.Refresh(ctx, token)
	} else {
		err = s.catalog.RefreshResources(ctx, token)
	}
	if err != nil {
		s.log.Warn("catalog re-sync failed", sl.Err(err))
	}
	s.publish(ctx, events.Event{Type: events.CatalogChanged})
}
