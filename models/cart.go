package models

import "time"

// CartLine is one (product, size) entry in a user's cart. Price is the
// product's final price snapshotted when the line was added, so later
// catalog price changes do not retroactively alter an unpaid cart.
type CartLine struct {
	LineID    string  `json:"lineId" bson:"lineId"`
	ProductID string  `json:"productId" bson:"productId"`
	Size      string  `json:"size,omitempty" bson:"size,omitempty"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
}

// Cart is owned one-to-one by a user. Created lazily on first add and
// only ever emptied, never deleted.
type Cart struct {
	CartID    string     `json:"cartId" bson:"cartId"`
	UserID    string     `json:"userId" bson:"userId"`
	Lines     []CartLine `json:"lines" bson:"lines"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// CartViewLine is a cart line joined with product display fields.
type CartViewLine struct {
	LineID    string  `json:"lineId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
}

// CartView is what cart reads return. An absent cart yields the empty view.
type CartView struct {
	CartID     string         `json:"cartId,omitempty"`
	UserID     string         `json:"userId,omitempty"`
	Products   []CartViewLine `json:"products"`
	Total      float64        `json:"total"`
	ItemsCount int            `json:"itemsCount"`
}
