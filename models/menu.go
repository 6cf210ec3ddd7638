package models

import "time"

type Category struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Description  string     `json:"description"`
	ImageURL     string     `json:"image_url" gorm:"size:255"`
	DisplayOrder int        `json:"display_order" gorm:"not null;default:0"`
	IsActive     bool       `json:"is_active" gorm:"not null"`
	MenuItems    []MenuItem `json:"menu_items,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type MenuItem struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CategoryID   uint      `json:"category_id" gorm:"not null;index"`
	Category     *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Name         string    `json:"name" gorm:"size:150;not null"`
	Description  string    `json:"description"`
	Price        float64   `json:"price" gorm:"not null"`
	ImageURL     string    `json:"image_url" gorm:"size:255"`
	IsAvailable  bool      `json:"is_available" gorm:"not null"`
	IsFeatured   bool      `json:"is_featured" gorm:"not null;default:false"`
	IsVegetarian bool      `json:"is_vegetarian" gorm:"not null;default:false"`
	IsVegan      bool      `json:"is_vegan" gorm:"not null;default:false"`
	IsGlutenFree bool      `json:"is_gluten_free" gorm:"not null;default:false"`
	SpiceLevel   int       `json:"spice_level" gorm:"not null;default:0"` // 0 (mild) .. 5
	PrepTime     int       `json:"prep_time_minutes" gorm:"not null;default:15"`
	DisplayOrder int       `json:"display_order" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const MaxSpiceLevel = 5
