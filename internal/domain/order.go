package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageFile string          `json:"imageFile,omitempty"`
}

type Order struct {
	ID              string          `json:"_id"`
	UserID          string          `json:"userId,omitempty"`
	Items           []OrderItem     `json:"items"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)
