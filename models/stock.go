package models

// StockUpdate is the payload broadcast to connected clients whenever a
// product's available quantity changes.
type StockUpdate struct {
	Type      string `json:"type"`
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}
