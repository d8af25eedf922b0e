package payments

import (
	"context"
	"fmt"
)

// LineItem is one row of a provider checkout session. UnitAmount is in
// the currency's smallest unit.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type SessionParams struct {
	OrderID       string
	CustomerEmail string
	LineItems     []LineItem
	CouponID      string
}

type Session struct {
	ID  string
	URL string
}

// Event is a verified, parsed provider webhook event. OrderID is the
// correlation id lifted from session metadata; empty when absent.
type Event struct {
	Type          string
	SessionID     string
	OrderID       string
	PaymentIntent string
}

// CheckoutCompleted is the only event type the settlement path acts on.
const CheckoutCompleted = "checkout.session.completed"

// Gateway is the thin seam to the payment provider. The orchestrator
// depends on this interface; the Stripe implementation lives in stripe.go.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params SessionParams) (Session, error)
	// CreatePercentCoupon mirrors an applied percentage coupon on the
	// provider side as a single-use discount.
	CreatePercentCoupon(ctx context.Context, percentOff float64) (string, error)
	// CreateAmountCoupon is the fixed-discount equivalent; amountOff is
	// in the smallest currency unit.
	CreateAmountCoupon(ctx context.Context, amountOff int64) (string, error)
	// VerifyEvent checks the raw payload against the shared signing
	// secret before trusting any field. The payload must be the exact
	// byte stream the provider sent.
	VerifyEvent(payload []byte, sigHeader string) (Event, error)
}

// ErrGateway wraps provider-side failures so callers can treat them as a
// single non-retriable kind.
func ErrGateway(op string, err error) error {
	return fmt.Errorf("payment gateway %s: %w", op, err)
}
