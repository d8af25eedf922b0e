package orders

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"vitrine/catalog"
	"vitrine/coupons"
	"vitrine/models"
	"vitrine/payments"
	"vitrine/utils"
)

// CartSource is the slice of the cart service checkout needs.
type CartSource interface {
	View(ctx context.Context, userID string) (models.CartView, error)
	Clear(ctx context.Context, userID string) error
}

type Products interface {
	FindByID(ctx context.Context, id string) (models.Product, error)
}

type Coupons interface {
	Apply(ctx context.Context, code string, total float64) (coupons.Application, error)
	RedeemUsage(ctx context.Context, code string) error
}

type Stock interface {
	Adjust(ctx context.Context, productID string, qty int, increment bool) (int, error)
}

type Invoices interface {
	WriteFile(order models.Order) (string, error)
	Render(order models.Order) ([]byte, error)
}

type Store interface {
	Insert(ctx context.Context, order models.Order) error
	FindByID(ctx context.Context, orderID string) (models.Order, error)
	FindPage(ctx context.Context, userID string, skip, limit int64) ([]models.Order, int64, error)
	// SetStatus moves a still-pending unpaid order to status. The
	// precondition lives in the write itself so it cannot race a
	// concurrent settlement. matched is false when no such order exists,
	// including when another write already moved it out of pending.
	SetStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, bool, error)
	// SetContact patches contact fields, gated on the order still being
	// pending the same way SetStatus is.
	SetContact(ctx context.Context, orderID string, patch ContactPatch) (models.Order, bool, error)
	SetInvoice(ctx context.Context, orderID, filename string) error
	Delete(ctx context.Context, orderID string) (bool, error)
	// SettleCard flips exactly one unpaid card order to paid and
	// completed, returning the settled order. matched is false when no
	// such order exists, including when it was already settled.
	SettleCard(ctx context.Context, orderID, paymentIntent string) (models.Order, bool, error)
}

// CheckoutRequest carries the buyer-supplied checkout fields. The cart
// contents and all prices come from the server side.
type CheckoutRequest struct {
	Username      string               `json:"username"`
	Phone         string               `json:"phone"`
	Address       string               `json:"address"`
	Email         string               `json:"email"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	CouponCode    string               `json:"couponCode"`
}

// ContactPatch updates the deliverable fields of an order. Line items
// and prices are immutable after checkout.
type ContactPatch struct {
	Username *string `json:"username"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
}

// CheckoutResult is what the checkout endpoint returns. PaymentURL is
// only set for card orders and points at the provider-hosted page.
type CheckoutResult struct {
	Order      models.Order `json:"order"`
	PaymentURL string       `json:"paymentUrl,omitempty"`
	SessionID  string       `json:"sessionId,omitempty"`
}

type Service struct {
	store    Store
	cart     CartSource
	products Products
	coupons  Coupons
	stock    Stock
	gateway  payments.Gateway
	invoices Invoices
}

func NewService(store Store, cart CartSource, products Products, cpns Coupons, stock Stock, gateway payments.Gateway, invoices Invoices) *Service {
	return &Service{
		store:    store,
		cart:     cart,
		products: products,
		coupons:  cpns,
		stock:    stock,
		gateway:  gateway,
		invoices: invoices,
	}
}

// Create turns the user's cart into an order. Every line is re-resolved
// against the live catalog and re-checked for availability; any shortfall
// aborts the whole order before anything is written. Cash orders settle
// inline. Card orders stay pending until the provider webhook confirms
// payment, so their stock is not touched here.
func (s *Service) Create(ctx context.Context, userID string, req CheckoutRequest) (CheckoutResult, error) {
	if req.PaymentMethod != models.PaymentCash && req.PaymentMethod != models.PaymentCard {
		return CheckoutResult{}, fmt.Errorf("unknown payment method %q", req.PaymentMethod)
	}

	view, err := s.cart.View(ctx, userID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(view.Products) == 0 {
		return CheckoutResult{}, models.ErrEmptyCart
	}

	lines := make([]models.OrderLine, 0, len(view.Products))
	var total float64
	for _, item := range view.Products {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return CheckoutResult{}, err
		}
		if !catalog.Instock(product, item.Quantity) {
			return CheckoutResult{}, fmt.Errorf("product %s %w", product.Name, models.ErrOutOfStock)
		}
		subtotal := product.FinalPrice * float64(item.Quantity)
		lines = append(lines, models.OrderLine{
			ProductID: product.ProductID,
			Name:      product.Name,
			Price:     product.FinalPrice,
			Quantity:  item.Quantity,
			Subtotal:  subtotal,
			Discount:  product.Discount,
		})
		total += subtotal
	}

	finalTotal := total
	var discount float64
	var applied coupons.Application
	if req.CouponCode != "" {
		applied, err = s.coupons.Apply(ctx, req.CouponCode, total)
		if err != nil {
			return CheckoutResult{}, err
		}
		discount = applied.Discount
		finalTotal = applied.FinalTotal
	}

	now := time.Now()
	order := models.Order{
		OrderID:       utils.GetUUID(),
		UserID:        userID,
		CartID:        view.CartID,
		Username:      req.Username,
		Phone:         req.Phone,
		Address:       req.Address,
		Products:      lines,
		Price:         total,
		Discount:      discount,
		FinalPrice:    finalTotal,
		PaymentMethod: req.PaymentMethod,
		OrderStatus:   models.OrderPending,
		Paid:          false,
		Coupon:        req.CouponCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Insert(ctx, order); err != nil {
		return CheckoutResult{}, err
	}

	if req.PaymentMethod == models.PaymentCash {
		settled, err := s.settleCash(ctx, order)
		if err != nil {
			return CheckoutResult{}, err
		}
		return CheckoutResult{Order: settled}, nil
	}

	session, err := s.openCardSession(ctx, order, applied, req.Email)
	if err != nil {
		return CheckoutResult{}, err
	}
	return CheckoutResult{Order: order, PaymentURL: session.URL, SessionID: session.ID}, nil
}

func (s *Service) settleCash(ctx context.Context, order models.Order) (models.Order, error) {
	for _, line := range order.Products {
		if _, err := s.stock.Adjust(ctx, line.ProductID, line.Quantity, false); err != nil {
			return models.Order{}, err
		}
	}
	if err := s.cart.Clear(ctx, order.UserID); err != nil {
		log.Println("clear cart after cash order:", err)
	}
	if err := s.coupons.RedeemUsage(ctx, order.Coupon); err != nil {
		log.Println("redeem coupon", order.Coupon, "after cash order:", err)
	}
	updated, matched, err := s.store.SetStatus(ctx, order.OrderID, models.OrderCompleted)
	if err != nil {
		return models.Order{}, err
	}
	if !matched {
		return models.Order{}, fmt.Errorf("order %s %w", order.OrderID, models.ErrConflict)
	}
	s.attachInvoice(ctx, &updated)
	return updated, nil
}

func (s *Service) openCardSession(ctx context.Context, order models.Order, applied coupons.Application, email string) (payments.Session, error) {
	var couponID string
	if order.Coupon != "" {
		var err error
		switch applied.Type {
		case models.DiscountPercentage:
			couponID, err = s.gateway.CreatePercentCoupon(ctx, applied.Value)
		case models.DiscountFixed:
			couponID, err = s.gateway.CreateAmountCoupon(ctx, toMinorUnits(applied.Discount))
		}
		if err != nil {
			return payments.Session{}, err
		}
	}

	items := make([]payments.LineItem, 0, len(order.Products))
	for _, line := range order.Products {
		items = append(items, payments.LineItem{
			Name:       line.Name,
			UnitAmount: toMinorUnits(line.Price),
			Quantity:   int64(line.Quantity),
		})
	}
	return s.gateway.CreateCheckoutSession(ctx, payments.SessionParams{
		OrderID:       order.OrderID,
		CustomerEmail: email,
		LineItems:     items,
		CouponID:      couponID,
	})
}

// Settle finalizes a card order after payment confirmation. The store
// write is conditional on the order still being unpaid, so a redelivered
// webhook matches nothing and the side effects run at most once.
func (s *Service) Settle(ctx context.Context, orderID, paymentIntent string) error {
	order, matched, err := s.store.SettleCard(ctx, orderID, paymentIntent)
	if err != nil {
		return err
	}
	if !matched {
		log.Println("settle: order", orderID, "already settled or not a pending card order")
		return nil
	}

	for _, line := range order.Products {
		if _, err := s.stock.Adjust(ctx, line.ProductID, line.Quantity, false); err != nil {
			// Payment is already captured; an availability shortfall here
			// is logged for operator follow-up rather than failing the
			// settlement.
			log.Println("settle: adjust stock for", line.ProductID, "failed:", err)
		}
	}
	if err := s.cart.Clear(ctx, order.UserID); err != nil {
		log.Println("settle: clear cart:", err)
	}
	if err := s.coupons.RedeemUsage(ctx, order.Coupon); err != nil {
		log.Println("settle: redeem coupon", order.Coupon, ":", err)
	}
	s.attachInvoice(ctx, &order)
	return nil
}

func (s *Service) attachInvoice(ctx context.Context, order *models.Order) {
	if s.invoices == nil {
		return
	}
	name, err := s.invoices.WriteFile(*order)
	if err != nil {
		log.Println("write invoice for", order.OrderID, ":", err)
		return
	}
	order.Invoice = name
	if err := s.store.SetInvoice(ctx, order.OrderID, name); err != nil {
		log.Println("record invoice for", order.OrderID, ":", err)
	}
}

// HandleEvent routes a verified provider event. Anything that is not a
// completed checkout with an order id is acknowledged and dropped.
func (s *Service) HandleEvent(ctx context.Context, ev payments.Event) error {
	if ev.Type != payments.CheckoutCompleted {
		return nil
	}
	if ev.OrderID == "" {
		log.Println("webhook: completed session", ev.SessionID, "without order id")
		return nil
	}
	return s.Settle(ctx, ev.OrderID, ev.PaymentIntent)
}

// FindAll lists orders newest first. Admins see everyone's orders; a
// regular user only their own.
func (s *Service) FindAll(ctx context.Context, userID string, admin bool, page, limit int) ([]models.Order, utils.Pagination, error) {
	filterUser := userID
	if admin {
		filterUser = ""
	}
	skip := int64((page - 1) * limit)
	items, total, err := s.store.FindPage(ctx, filterUser, skip, int64(limit))
	if err != nil {
		return nil, utils.Pagination{}, err
	}
	return items, utils.NewPagination(total, page, limit), nil
}

func (s *Service) FindOne(ctx context.Context, orderID, userID string, admin bool) (models.Order, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if !admin && order.UserID != userID {
		return models.Order{}, fmt.Errorf("order %w", models.ErrUnauthorized)
	}
	return order, nil
}

// ChangeStatus moves a pending order to completed or cancelled; both are
// terminal. The precondition rides in the store write, so a settlement
// landing concurrently wins and this call reports the conflict instead of
// overwriting a paid order.
func (s *Service) ChangeStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, error) {
	if status != models.OrderCompleted && status != models.OrderCancelled {
		return models.Order{}, fmt.Errorf("unknown order status %q", status)
	}
	order, matched, err := s.store.SetStatus(ctx, orderID, status)
	if err != nil {
		return models.Order{}, err
	}
	if !matched {
		return models.Order{}, s.notPendingErr(ctx, orderID)
	}
	return order, nil
}

// Update patches an order's contact fields. Only pending orders are
// editable; a settled order is a closed record.
func (s *Service) Update(ctx context.Context, orderID string, patch ContactPatch) (models.Order, error) {
	order, matched, err := s.store.SetContact(ctx, orderID, patch)
	if err != nil {
		return models.Order{}, err
	}
	if !matched {
		return models.Order{}, s.notPendingErr(ctx, orderID)
	}
	return order, nil
}

// notPendingErr turns an unmatched conditional write into NotFound or
// Conflict depending on whether the order exists at all.
func (s *Service) notPendingErr(ctx context.Context, orderID string) error {
	current, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	return fmt.Errorf("order already %s: %w", current.OrderStatus, models.ErrConflict)
}

func (s *Service) Remove(ctx context.Context, orderID string) error {
	matched, err := s.store.Delete(ctx, orderID)
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("order %w", models.ErrNotFound)
	}
	return nil
}

// Invoice renders the invoice PDF for download. Only the owner or an
// admin may fetch it.
func (s *Service) Invoice(ctx context.Context, orderID, userID string, admin bool) ([]byte, error) {
	order, err := s.FindOne(ctx, orderID, userID, admin)
	if err != nil {
		return nil, err
	}
	return s.invoices.Render(order)
}

// toMinorUnits converts a price in major units to the smallest currency
// unit, rounding to the nearest cent.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
