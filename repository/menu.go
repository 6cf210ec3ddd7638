package repository

import (
	"context"

	"github.com/Sujan7036/friends-momo-sub001/models"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	*Repository[models.Category]
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{New[models.Category](db,
		"name", "description", "image_url", "display_order", "is_active",
	)}
}

// Active returns the categories shown on the public menu.
func (r *CategoryRepository) Active(ctx context.Context) ([]models.Category, error) {
	return r.FindAll(ctx, Filters{"is_active": true}, "display_order asc, name asc", 0)
}

func (r *CategoryRepository) Ordered(ctx context.Context) ([]models.Category, error) {
	return r.FindAll(ctx, nil, "display_order asc, name asc", 0)
}

// CountItems reports how many menu items still reference the category.
func (r *CategoryRepository) CountItems(ctx context.Context, id uint) (int64, error) {
	var n int64
	if err := r.DB(ctx).Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return 0, wrap(err)
	}
	return n, nil
}

type MenuItemRepository struct {
	*Repository[models.MenuItem]
}

func NewMenuItemRepository(db *gorm.DB) *MenuItemRepository {
	return &MenuItemRepository{New[models.MenuItem](db,
		"category_id", "name", "description", "price", "image_url",
		"is_available", "is_featured", "is_vegetarian", "is_vegan", "is_gluten_free",
		"spice_level", "prep_time", "display_order",
	)}
}

// MenuFilter narrows the public menu listing.
type MenuFilter struct {
	CategoryID    uint
	Vegetarian    bool
	Vegan         bool
	GlutenFree    bool
	FeaturedOnly  bool
	MaxSpiceLevel *int
	Search        string
}

// publicScope limits a query to items a customer may see: available, in an
// active category.
func (r *MenuItemRepository) publicScope(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Joins("JOIN categories ON categories.id = menu_items.category_id").
		Where("menu_items.is_available = ? AND categories.is_active = ?", true, true)
}

func (r *MenuItemRepository) Public(ctx context.Context, f MenuFilter) ([]models.MenuItem, error) {
	q := r.publicScope(ctx)
	if f.CategoryID != 0 {
		q = q.Where("menu_items.category_id = ?", f.CategoryID)
	}
	if f.Vegetarian {
		q = q.Where("menu_items.is_vegetarian = ?", true)
	}
	if f.Vegan {
		q = q.Where("menu_items.is_vegan = ?", true)
	}
	if f.GlutenFree {
		q = q.Where("menu_items.is_gluten_free = ?", true)
	}
	if f.FeaturedOnly {
		q = q.Where("menu_items.is_featured = ?", true)
	}
	if f.MaxSpiceLevel != nil {
		q = q.Where("menu_items.spice_level <= ?", *f.MaxSpiceLevel)
	}
	q = r.SearchScope(q, f.Search, []string{"menu_items.name", "menu_items.description"})

	var items []models.MenuItem
	err := q.Preload("Category").
		Order("categories.display_order asc, menu_items.display_order asc, menu_items.name asc").
		Find(&items).Error
	if err != nil {
		return nil, wrap(err)
	}
	return items, nil
}

// FindPublic returns the item only if a customer may order it.
func (r *MenuItemRepository) FindPublic(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.publicScope(ctx).Preload("Category").First(&item, "menu_items.id = ?", id).Error; err != nil {
		return nil, wrap(err)
	}
	return &item, nil
}

func (r *MenuItemRepository) WithCategory(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := r.DB(ctx).Preload("Category").First(&item, id).Error; err != nil {
		return nil, wrap(err)
	}
	return &item, nil
}

func (r *MenuItemRepository) SetAvailability(ctx context.Context, id uint, available bool) error {
	return r.set(ctx, id, map[string]any{"is_available": available})
}

// AdminList pages over every item, including unavailable ones.
func (r *MenuItemRepository) AdminList(ctx context.Context, categoryID uint, search string, page, perPage int) (*Page[models.MenuItem], error) {
	q := r.DB(ctx)
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	q = r.SearchScope(q, search, []string{"name", "description"})
	return r.PaginateQuery(ctx, q, page, perPage, "category_id asc, display_order asc, name asc", "Category")
}
