package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
)

type MenuService struct {
	categories *repository.CategoryRepository
	items      *repository.MenuItemRepository
	activity   *ActivityService
}

func NewMenuService(categories *repository.CategoryRepository, items *repository.MenuItemRepository, activity *ActivityService) *MenuService {
	return &MenuService{categories: categories, items: items, activity: activity}
}

// ── Public menu ──────────────────────────────────────────────────────────────

func (s *MenuService) Menu(ctx context.Context, f repository.MenuFilter) ([]models.MenuItem, error) {
	return s.items.Public(ctx, f)
}

func (s *MenuService) Item(ctx context.Context, id uint) (*models.MenuItem, error) {
	return s.items.FindPublic(ctx, id)
}

func (s *MenuService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.Active(ctx)
}

// ── Menu item management ─────────────────────────────────────────────────────

type MenuItemInput struct {
	CategoryID   uint    `json:"category_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url"`
	IsAvailable  *bool   `json:"is_available"`
	IsFeatured   bool    `json:"is_featured"`
	IsVegetarian bool    `json:"is_vegetarian"`
	IsVegan      bool    `json:"is_vegan"`
	IsGlutenFree bool    `json:"is_gluten_free"`
	SpiceLevel   int     `json:"spice_level"`
	PrepTime     int     `json:"prep_time_minutes"`
	DisplayOrder int     `json:"display_order"`
}

func (in MenuItemInput) validate() error {
	v := &ValidationError{}
	v.required("name", in.Name)
	if in.CategoryID == 0 {
		v.Add("category_id", "is required")
	}
	if in.Price <= 0 {
		v.Add("price", "must be greater than zero")
	}
	if in.SpiceLevel < 0 || in.SpiceLevel > models.MaxSpiceLevel {
		v.Add("spice_level", fmt.Sprintf("must be between 0 and %d", models.MaxSpiceLevel))
	}
	if in.PrepTime < 0 {
		v.Add("prep_time_minutes", "must not be negative")
	}
	// vegan implies vegetarian
	if in.IsVegan && !in.IsVegetarian {
		v.Add("is_vegetarian", "must be set for vegan items")
	}
	return v.Err()
}

func (in MenuItemInput) fields() map[string]any {
	f := map[string]any{
		"category_id":    in.CategoryID,
		"name":           strings.TrimSpace(in.Name),
		"description":    strings.TrimSpace(in.Description),
		"price":          in.Price,
		"image_url":      strings.TrimSpace(in.ImageURL),
		"is_featured":    in.IsFeatured,
		"is_vegetarian":  in.IsVegetarian,
		"is_vegan":       in.IsVegan,
		"is_gluten_free": in.IsGlutenFree,
		"spice_level":    in.SpiceLevel,
		"prep_time":      in.PrepTime,
		"display_order":  in.DisplayOrder,
	}
	if in.IsAvailable != nil {
		f["is_available"] = *in.IsAvailable
	}
	return f
}

func (s *MenuService) ListItems(ctx context.Context, categoryID uint, search string, page, perPage int) (*repository.Page[models.MenuItem], error) {
	return s.items.AdminList(ctx, categoryID, search, page, perPage)
}

func (s *MenuService) GetItem(ctx context.Context, id uint) (*models.MenuItem, error) {
	return s.items.WithCategory(ctx, id)
}

func (s *MenuService) CreateItem(ctx context.Context, actorID uint, in MenuItemInput, ip string) (*models.MenuItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	item := &models.MenuItem{
		CategoryID:   in.CategoryID,
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		IsAvailable:  in.IsAvailable == nil || *in.IsAvailable,
		IsFeatured:   in.IsFeatured,
		IsVegetarian: in.IsVegetarian,
		IsVegan:      in.IsVegan,
		IsGlutenFree: in.IsGlutenFree,
		SpiceLevel:   in.SpiceLevel,
		PrepTime:     in.PrepTime,
		DisplayOrder: in.DisplayOrder,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	s.activity.Log(ctx, actorID, ActionMenuChanged, "Created menu item "+item.Name, ip)
	return item, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, actorID, id uint, in MenuItemInput, ip string) (*models.MenuItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if err := s.items.Update(ctx, id, in.fields()); err != nil {
		return nil, err
	}
	s.activity.Log(ctx, actorID, ActionMenuChanged, fmt.Sprintf("Updated menu item #%d", id), ip)
	return s.items.WithCategory(ctx, id)
}

func (s *MenuService) SetAvailability(ctx context.Context, actorID, id uint, available bool, ip string) error {
	if err := s.items.SetAvailability(ctx, id, available); err != nil {
		return err
	}
	state := "unavailable"
	if available {
		state = "available"
	}
	s.activity.Log(ctx, actorID, ActionMenuChanged, fmt.Sprintf("Marked menu item #%d %s", id, state), ip)
	return nil
}

func (s *MenuService) DeleteItem(ctx context.Context, actorID, id uint, ip string) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Log(ctx, actorID, ActionMenuChanged, fmt.Sprintf("Deleted menu item #%d", id), ip)
	return nil
}

func (s *MenuService) checkCategory(ctx context.Context, id uint) error {
	if _, err := s.categories.Find(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			v := &ValidationError{}
			v.Add("category_id", "does not exist")
			return v
		}
		return err
	}
	return nil
}

// ── Category management ──────────────────────────────────────────────────────

type CategoryInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
}

func (s *MenuService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.Ordered(ctx)
}

func (s *MenuService) CreateCategory(ctx context.Context, actorID uint, in CategoryInput, ip string) (*models.Category, error) {
	v := &ValidationError{}
	v.required("name", in.Name)
	if err := v.Err(); err != nil {
		return nil, err
	}
	c := &models.Category{
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		DisplayOrder: in.DisplayOrder,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.activity.Log(ctx, actorID, ActionMenuChanged, "Created category "+c.Name, ip)
	return c, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, actorID, id uint, in CategoryInput, ip string) (*models.Category, error) {
	v := &ValidationError{}
	v.required("name", in.Name)
	if err := v.Err(); err != nil {
		return nil, err
	}
	fields := map[string]any{
		"name":          strings.TrimSpace(in.Name),
		"description":   strings.TrimSpace(in.Description),
		"image_url":     strings.TrimSpace(in.ImageURL),
		"display_order": in.DisplayOrder,
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if err := s.categories.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.activity.Log(ctx, actorID, ActionMenuChanged, fmt.Sprintf("Updated category #%d", id), ip)
	return s.categories.Find(ctx, id)
}

// DeleteCategory refuses while menu items still belong to the category.
func (s *MenuService) DeleteCategory(ctx context.Context, actorID, id uint, ip string) error {
	if _, err := s.categories.Find(ctx, id); err != nil {
		return err
	}
	n, err := s.categories.CountItems(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Log(ctx, actorID, ActionMenuChanged, fmt.Sprintf("Deleted category #%d", id), ip)
	return nil
}
