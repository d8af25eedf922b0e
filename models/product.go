package models

import "time"

// Product is the catalog entry. Stock is the single source of truth for
// availability and is mutated only through the stock ledger.
type Product struct {
	ProductID   string    `json:"productId" bson:"productId"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	Price       float64   `json:"price" bson:"price"`
	Discount    float64   `json:"discount" bson:"discount"` // percent off the list price
	FinalPrice  float64   `json:"finalPrice" bson:"finalPrice"`
	Stock       int       `json:"stock" bson:"stock"`
	Sizes       []string  `json:"sizes,omitempty" bson:"sizes,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}
