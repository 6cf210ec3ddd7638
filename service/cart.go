package service

import (
	"context"
	"errors"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/repository"
)

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 99

type CartService struct {
	items    *repository.MenuItemRepository
	settings *SettingsService
}

func NewCartService(items *repository.MenuItemRepository, settings *SettingsService) *CartService {
	return &CartService{items: items, settings: settings}
}

// Summary is what the cart endpoint returns after every action.
type Summary struct {
	Lines  []CartLine  `json:"items"`
	Totals cart.Totals `json:"totals"`
}

type CartLine struct {
	cart.Line
	LineTotal float64 `json:"line_total"`
}

// Add puts a menu item on c. The item must exist and be orderable.
func (s *CartService) Add(ctx context.Context, c *cart.Cart, itemID uint, quantity int, instructions string) (string, error) {
	if quantity < 1 {
		return "", cart.ErrInvalidQuantity
	}
	item, err := s.items.FindPublic(ctx, itemID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrItemUnavailable
	}
	if err != nil {
		return "", err
	}

	if existing, ok := c.Line(cart.LineKey(itemID, instructions)); ok {
		quantity += existing.Quantity
		if quantity > MaxLineQuantity {
			return "", quantityTooLarge()
		}
		return existing.Key, c.Update(existing.Key, quantity)
	}
	if quantity > MaxLineQuantity {
		return "", quantityTooLarge()
	}
	return c.Add(cart.Item{ID: item.ID, Name: item.Name, Price: item.Price, ImageURL: item.ImageURL}, quantity, instructions)
}

// Update sets the quantity of a line; zero or less removes it.
func (s *CartService) Update(c *cart.Cart, key string, quantity int) error {
	if quantity > MaxLineQuantity {
		return quantityTooLarge()
	}
	return c.Update(key, quantity)
}

func (s *CartService) Remove(c *cart.Cart, key string) error {
	return c.Remove(key)
}

func (s *CartService) Clear(c *cart.Cart) {
	c.Clear()
}

// Summarize prices c with the current settings.
func (s *CartService) Summarize(ctx context.Context, c *cart.Cart) (*Summary, error) {
	pricing, err := s.settings.Pricing(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, CartLine{Line: l, LineTotal: l.Total()})
	}
	return &Summary{Lines: lines, Totals: c.Totals(pricing)}, nil
}

func quantityTooLarge() error {
	v := &ValidationError{}
	v.Add("quantity", "must be at most 99")
	return v
}
