package models

import "time"

// OrderStatus represents all possible states of a restaurant order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
	StatusDelivered, StatusCompleted, StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

type Order struct {
	ID                  uint                 `json:"id" gorm:"primaryKey"`
	OrderNumber         string               `json:"order_number" gorm:"size:32;uniqueIndex;not null"`
	UserID              *uint                `json:"user_id" gorm:"index"`
	User                *User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CustomerName        string               `json:"customer_name" gorm:"size:200;not null"`
	CustomerEmail       string               `json:"customer_email" gorm:"size:191;not null"`
	CustomerPhone       string               `json:"customer_phone" gorm:"size:30;not null"`
	OrderType           OrderType            `json:"order_type" gorm:"size:20;not null;default:'delivery'"`
	DeliveryAddress     string               `json:"delivery_address"`
	SpecialInstructions string               `json:"special_instructions"`
	PaymentMethod       PaymentMethod        `json:"payment_method" gorm:"size:20;not null;default:'cash'"`
	Status              OrderStatus          `json:"status" gorm:"size:20;not null;default:'pending';index"`
	Subtotal            float64              `json:"subtotal" gorm:"not null"`
	Tax                 float64              `json:"tax" gorm:"not null"`
	DeliveryFee         float64              `json:"delivery_fee" gorm:"not null"`
	Total               float64              `json:"total" gorm:"not null"`
	CancellationReason  string               `json:"cancellation_reason,omitempty"`
	CancelledAt         *time.Time           `json:"cancelled_at,omitempty"`
	Items               []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory       []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// OrderItem is the price/quantity snapshot taken at checkout; the menu item
// is only referenced for display.
type OrderItem struct {
	ID                  uint      `json:"id" gorm:"primaryKey"`
	OrderID             uint      `json:"order_id" gorm:"not null;index"`
	MenuItemID          uint      `json:"menu_item_id" gorm:"not null"`
	MenuItem            *MenuItem `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Name                string    `json:"name" gorm:"size:150;not null"`
	Quantity            int       `json:"quantity" gorm:"not null"`
	UnitPrice           float64   `json:"unit_price" gorm:"not null"`
	LineTotal           float64   `json:"line_total" gorm:"not null"`
	SpecialInstructions string    `json:"special_instructions"`
	CreatedAt           time.Time `json:"created_at"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null;index"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  *uint       `json:"changed_by"`
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
