package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/settings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type sampleCategory struct {
	name  string
	desc  string
	items []models.MenuItem
}

var sampleMenu = []sampleCategory{
	{"Momo", "Hand-folded dumplings, steamed or fried", []models.MenuItem{
		{Name: "Chicken Momo", Description: "Minced chicken, ginger and coriander", Price: 12.50, IsFeatured: true, SpiceLevel: 1, PrepTime: 15},
		{Name: "Veg Momo", Description: "Cabbage, carrot and paneer", Price: 11.00, IsVegetarian: true, SpiceLevel: 1, PrepTime: 15},
		{Name: "Jhol Momo", Description: "Chicken momo in a spiced tomato broth", Price: 14.00, IsFeatured: true, SpiceLevel: 3, PrepTime: 20},
		{Name: "C-Momo", Description: "Fried momo tossed in chilli sauce", Price: 14.50, SpiceLevel: 4, PrepTime: 20},
	}},
	{"Noodles & Soups", "", []models.MenuItem{
		{Name: "Thukpa", Description: "Tibetan noodle soup with vegetables", Price: 13.00, IsVegetarian: true, IsVegan: true, SpiceLevel: 2, PrepTime: 15},
		{Name: "Chowmein", Description: "Stir-fried noodles with chicken", Price: 12.00, SpiceLevel: 1, PrepTime: 12},
	}},
	{"Drinks", "", []models.MenuItem{
		{Name: "Masala Chai", Description: "Spiced milk tea", Price: 4.00, IsVegetarian: true, IsGlutenFree: true, PrepTime: 5},
		{Name: "Mango Lassi", Description: "Yoghurt and mango", Price: 5.50, IsVegetarian: true, IsGlutenFree: true, PrepTime: 5},
	}},
}

// Seed inserts missing default settings, the first admin account and, on
// an empty menu, a sample menu. It is safe to run repeatedly.
func Seed(ctx context.Context, db *gorm.DB, cfg *Config) error {
	if err := seedSettings(ctx, db, cfg.Pricing); err != nil {
		return err
	}
	if err := seedAdmin(ctx, db, cfg.Seed); err != nil {
		return err
	}
	return seedMenu(ctx, db)
}

func seedSettings(ctx context.Context, db *gorm.DB, p cart.Pricing) error {
	repo := repository.NewSettingRepository(db)
	for _, d := range settings.Defaults(p) {
		d := d
		if err := repo.EnsureDefault(ctx, &d); err != nil {
			return fmt.Errorf("seed setting %s: %w", d.Key, err)
		}
	}
	return nil
}

func seedAdmin(ctx context.Context, db *gorm.DB, sc SeedConfig) error {
	users := repository.NewUserRepository(db)
	_, err := users.FindByEmail(ctx, sc.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if sc.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set, skipping admin account", "email", sc.AdminEmail)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(sc.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.User{
		FirstName:    "Site",
		LastName:     "Admin",
		Email:        repository.NormalizeEmail(sc.AdminEmail),
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	slog.Info("Admin account created", "email", admin.Email)
	return nil
}

func seedMenu(ctx context.Context, db *gorm.DB) error {
	cats := repository.NewCategoryRepository(db)
	n, err := cats.Count(ctx, nil)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	items := repository.NewMenuItemRepository(db)
	for i, sc := range sampleMenu {
		cat := &models.Category{Name: sc.name, Description: sc.desc, DisplayOrder: i + 1, IsActive: true}
		if err := cats.Create(ctx, cat); err != nil {
			return fmt.Errorf("seed category %s: %w", sc.name, err)
		}
		for j, item := range sc.items {
			item.CategoryID = cat.ID
			item.IsAvailable = true
			item.DisplayOrder = j + 1
			if err := items.Create(ctx, &item); err != nil {
				return fmt.Errorf("seed menu item %s: %w", item.Name, err)
			}
		}
	}
	slog.Info("Sample menu created", "categories", len(sampleMenu))
	return nil
}
