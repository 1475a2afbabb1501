package models

import (
	"fmt"
	"time"

	"restaurant-ordering-api/errs"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPreparing OrderStatus = "PREPARING"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// PaymentStatus is an independent axis from order status
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "UNPAID"
	PaymentPaid   PaymentStatus = "PAID"
)

// ParseOrderStatus rejects unknown status strings before any lookup occurs
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", errs.ErrInvalidStatus, s)
}

type Order struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	Number        string        `json:"number" gorm:"uniqueIndex;not null"`
	CustomerName  string        `json:"customer_name" gorm:"not null"`
	Phone         string        `json:"phone" gorm:"not null"`
	Items         []OrderItem   `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	ServiceFee    float64       `json:"service_fee"`
	Total         float64       `json:"total"`
	Status        OrderStatus   `json:"status" gorm:"not null;default:'PENDING'"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"not null;default:'UNPAID'"`
	Note          string        `json:"note"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// OrderItem is a price snapshot taken at order-creation time; later menu
// edits never retroactively change historical orders.
type OrderItem struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	OrderID    string            `json:"order_id" gorm:"not null;index"`
	Name       string            `json:"name" gorm:"not null"`    // snapshot name
	UnitPrice  float64           `json:"unit_price"`              // snapshot price at time of order
	Quantity   int               `json:"quantity" gorm:"not null"`
	FinalPrice float64           `json:"final_price"` // unit_price*quantity + option deltas
	Options    []OrderItemOption `json:"options,omitempty" gorm:"foreignKey:OrderItemID"`
}

type OrderItemOption struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	OrderItemID uint    `json:"order_item_id" gorm:"not null;index"`
	Name        string  `json:"name" gorm:"not null"`
	PriceDelta  float64 `json:"price_delta"` // snapshot delta per option unit
	Quantity    int     `json:"quantity" gorm:"not null"`
}
