// Package cart holds the session cart: lines keyed by menu item and special
// instructions, and the totals derived from them.
package cart

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrLineNotFound    = errors.New("item not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Item is the menu item snapshot a line is created from.
type Item struct {
	ID       uint
	Name     string
	Price    float64
	ImageURL string
}

type Line struct {
	Key                 string  `json:"key"`
	MenuItemID          uint    `json:"menu_item_id"`
	Name                string  `json:"name"`
	Price               float64 `json:"price"`
	ImageURL            string  `json:"image_url,omitempty"`
	Quantity            int     `json:"quantity"`
	SpecialInstructions string  `json:"special_instructions,omitempty"`
}

// Total is the line's unit price times quantity.
func (l Line) Total() float64 {
	return Round(l.Price * float64(l.Quantity))
}

// Cart is owned by one session. The zero value is an empty cart.
type Cart struct {
	Lines []Line `json:"lines"`
}

// LineKey identifies a line: the same item with different instructions gets
// a different key.
func LineKey(itemID uint, instructions string) string {
	sum := md5.Sum([]byte(strings.TrimSpace(instructions)))
	return strconv.FormatUint(uint64(itemID), 10) + "_" + hex.EncodeToString(sum[:])
}

// Add puts quantity of item on the cart. A line with the same key has its
// quantity increased instead of a new line being created.
func (c *Cart) Add(item Item, quantity int, instructions string) (string, error) {
	if quantity < 1 {
		return "", ErrInvalidQuantity
	}
	instructions = strings.TrimSpace(instructions)
	key := LineKey(item.ID, instructions)
	if i := c.index(key); i >= 0 {
		c.Lines[i].Quantity += quantity
		return key, nil
	}
	c.Lines = append(c.Lines, Line{
		Key:                 key,
		MenuItemID:          item.ID,
		Name:                item.Name,
		Price:               item.Price,
		ImageURL:            item.ImageURL,
		Quantity:            quantity,
		SpecialInstructions: instructions,
	})
	return key, nil
}

// Update sets a line's quantity. Zero or less removes the line.
func (c *Cart) Update(key string, quantity int) error {
	i := c.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	if quantity <= 0 {
		c.removeAt(i)
		return nil
	}
	c.Lines[i].Quantity = quantity
	return nil
}

func (c *Cart) Remove(key string) error {
	i := c.index(key)
	if i < 0 {
		return ErrLineNotFound
	}
	c.removeAt(i)
	return nil
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Line(key string) (Line, bool) {
	if i := c.index(key); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount is the sum of quantities over all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Subtotal is the sum of unit price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, l := range c.Lines {
		sum += l.Price * float64(l.Quantity)
	}
	return Round(sum)
}

func (c *Cart) index(key string) int {
	for i, l := range c.Lines {
		if l.Key == key {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	if len(c.Lines) == 0 {
		c.Lines = nil
	}
}

// Pricing holds the rates totals are computed with.
type Pricing struct {
	TaxRate               float64 `json:"tax_rate"`
	DeliveryFee           float64 `json:"delivery_fee"`
	FreeDeliveryThreshold float64 `json:"free_delivery_threshold"`
}

// DefaultPricing is used when no settings override the rates.
var DefaultPricing = Pricing{
	TaxRate:               0.08,
	DeliveryFee:           3.99,
	FreeDeliveryThreshold: 25.00,
}

// DeliveryFeeFor charges the flat fee unless subtotal is strictly greater
// than the free-delivery threshold.
func (p Pricing) DeliveryFeeFor(subtotal float64) float64 {
	if subtotal > p.FreeDeliveryThreshold {
		return 0
	}
	return Round(p.DeliveryFee)
}

type Totals struct {
	ItemCount   int     `json:"item_count"`
	Subtotal    float64 `json:"subtotal"`
	Tax         float64 `json:"tax"`
	DeliveryFee float64 `json:"delivery_fee"`
	Total       float64 `json:"total"`
}

// Totals prices the cart. An empty cart totals zero, delivery fee included.
func (c *Cart) Totals(p Pricing) Totals {
	return Compute(c.Subtotal(), c.ItemCount(), p, true)
}

// Compute derives tax, delivery fee and grand total from a subtotal.
// withDelivery false drops the delivery fee (pickup orders).
func Compute(subtotal float64, itemCount int, p Pricing, withDelivery bool) Totals {
	subtotal = Round(subtotal)
	t := Totals{ItemCount: itemCount, Subtotal: subtotal}
	if itemCount == 0 {
		return t
	}
	t.Tax = Round(subtotal * p.TaxRate)
	if withDelivery {
		t.DeliveryFee = p.DeliveryFeeFor(subtotal)
	}
	t.Total = Round(t.Subtotal + t.Tax + t.DeliveryFee)
	return t
}

// Round rounds to 2 decimals, halves away from zero.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
