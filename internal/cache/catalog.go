package cache

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Kirill-j/bookinghub/internal/models"
)

// Порядок сортировки каталога.
const (
	SortPopular   = "popular"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// CatalogSource загружает категории и ресурсы с бэкенда.
type CatalogSource interface {
	Categories(ctx context.Context, token string) ([]models.Category, error)
	Resources(ctx context.Context, token string) ([]models.Resource, error)
}

// Filter — параметры отбора ресурсов каталога. Нулевые значения не ограничивают выборку.
type Filter struct {
	Query      string
	CategoryID uint64
	MinPrice   *int
	MaxPrice   *int
	Sort       string
}

// Catalog — кэш категорий и ресурсов.
type Catalog struct {
	src        CatalogSource
	categories *Slot[[]models.Category]
	resources  *Slot[[]models.Resource]
}

// NewCatalog создаёт пустой кэш каталога.
func NewCatalog(src CatalogSource) *Catalog {
	return &Catalog{
		src:        src,
		categories: NewSlot[[]models.Category]("categories"),
		resources:  NewSlot[[]models.Resource]("resources"),
	}
}

// Refresh параллельно перезагружает категории и ресурсы.
// Ошибка одной загрузки отменяет вторую; ранее сохранённые списки при этом не теряются.
func (c *Catalog) Refresh(ctx context.Context, token string) error {
	const op = "cache.Catalog.Refresh"

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.categories.Refresh(gctx, func(ctx context.Context) ([]models.Category, error) {
			return c.src.Categories(ctx, token)
		})
		return err
	})
	g.Go(func() error {
		_, err := c.resources.Refresh(gctx, func(ctx context.Context) ([]models.Resource, error) {
			return c.src.Resources(ctx, token)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RefreshResources перезагружает только список ресурсов.
func (c *Catalog) RefreshResources(ctx context.Context, token string) error {
	const op = "cache.Catalog.RefreshResources"

	_, err := c.resources.Refresh(ctx, func(ctx context.Context) ([]models.Resource, error) {
		return c.src.Resources(ctx, token)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RefreshCategories перезагружает только список категорий.
func (c *Catalog) RefreshCategories(ctx context.Context, token string) error {
	const op = "cache.Catalog.RefreshCategories"

	_, err := c.categories.Refresh(ctx, func(ctx context.Context) ([]models.Category, error) {
		return c.src.Categories(ctx, token)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Loaded сообщает, загружались ли оба списка хотя бы раз.
func (c *Catalog) Loaded() bool {
	_, cats := c.categories.Get()
	_, res := c.resources.Get()
	return cats && res
}

// Categories возвращает копию списка категорий.
func (c *Catalog) Categories() []models.Category {
	items, _ := c.categories.Get()
	return slices.Clone(items)
}

// Resources возвращает копию списка ресурсов в порядке бэкенда.
func (c *Catalog) Resources() []models.Resource {
	items, _ := c.resources.Get()
	return slices.Clone(items)
}

// Resource ищет ресурс по идентификатору.
func (c *Catalog) Resource(id uint64) (models.Resource, bool) {
	items, _ := c.resources.Get()
	for _, r := range items {
		if r.ID == id {
			return r, true
		}
	}
	return models.Resource{}, false
}

// CategoryName возвращает имя категории или "categoryId:<id>", если категория неизвестна.
func (c *Catalog) CategoryName(id uint64) string {
	items, _ := c.categories.Get()
	for _, cat := range items {
		if cat.ID == id {
			return cat.Name
		}
	}
	return "categoryId:" + strconv.FormatUint(id, 10)
}

// Filter отбирает ресурсы по строке поиска, категории и цене и сортирует их.
func (c *Catalog) Filter(f Filter) []models.Resource {
	return ApplyFilter(c.Resources(), f)
}

// ApplyFilter отбирает ресурсы из items. Поиск идёт без учёта регистра по названию и локации.
// Сортировка по цене устойчивая, "popular" и неизвестные значения сохраняют порядок бэкенда.
func ApplyFilter(items []models.Resource, f Filter) []models.Resource {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]models.Resource, 0, len(items))
	for _, r := range items {
		if query != "" &&
			!strings.Contains(strings.ToLower(r.Title), query) &&
			!strings.Contains(strings.ToLower(r.LocationOrEmpty()), query) {
			continue
		}
		if f.CategoryID != 0 && r.CategoryID != f.CategoryID {
			continue
		}
		if f.MinPrice != nil && r.PricePerHour < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && r.PricePerHour > *f.MaxPrice {
			continue
		}
		out = append(out, r)
	}

	switch f.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b models.Resource) int { return a.PricePerHour - b.PricePerHour })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b models.Resource) int { return b.PricePerHour - a.PricePerHour })
	}
	return out
}

// Clear забывает загруженный каталог.
func (c *Catalog) Clear() {
	c.categories.Clear()
	c.resources.Clear()
}
