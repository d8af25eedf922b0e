package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// OrderLine is a denormalized product snapshot captured at order time.
// It is never re-read from the live catalog.
type OrderLine struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Subtotal  float64 `json:"subtotal" bson:"subtotal"`
	Discount  float64 `json:"discount" bson:"discount"`
}

// Order is logically immutable once created, except for orderStatus,
// paid, payment_intent and invoice.
type Order struct {
	OrderID       string        `json:"orderId" bson:"orderId"`
	UserID        string        `json:"userId" bson:"userId"`
	CartID        string        `json:"cartId" bson:"cartId"`
	Username      string        `json:"username" bson:"username"`
	Phone         string        `json:"phone" bson:"phone"`
	Address       string        `json:"address" bson:"address"`
	Products      []OrderLine   `json:"products" bson:"products"`
	Price         float64       `json:"price" bson:"price"`
	Discount      float64       `json:"discount,omitempty" bson:"discount,omitempty"`
	FinalPrice    float64       `json:"finalPrice" bson:"finalPrice"`
	PaymentMethod PaymentMethod `json:"paymentMethod" bson:"paymentMethod"`
	OrderStatus   OrderStatus   `json:"orderStatus" bson:"orderStatus"`
	Paid          bool          `json:"paid" bson:"paid"`
	PaymentIntent string        `json:"payment_intent,omitempty" bson:"payment_intent,omitempty"`
	Coupon        string        `json:"coupon,omitempty" bson:"coupon,omitempty"`
	Invoice       string        `json:"invoice,omitempty" bson:"invoice,omitempty"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updatedAt"`
}
