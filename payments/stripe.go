package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"vitrine/models"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/coupon"
	"github.com/stripe/stripe-go/v82/webhook"
)

const metadataOrderID = "order_id"

type StripeGateway struct {
	webhookSecret string
	successURL    string
	cancelURL     string
	currency      string
}

// NewStripeGateway configures the package-level Stripe key and returns
// the gateway. Reads STRIPE_SECRET_KEY, STRIPE_WEBHOOK_SECRET,
// STRIPE_SUCCESS_URL, STRIPE_CANCEL_URL and STRIPE_CURRENCY.
func NewStripeGateway() *StripeGateway {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	currency := os.Getenv("STRIPE_CURRENCY")
	if currency == "" {
		currency = "usd"
	}
	successURL := os.Getenv("STRIPE_SUCCESS_URL")
	if successURL == "" {
		successURL = "http://localhost:3000/checkout/success"
	}
	cancelURL := os.Getenv("STRIPE_CANCEL_URL")
	if cancelURL == "" {
		cancelURL = "http://localhost:3000/checkout/cancel"
	}

	return &StripeGateway{
		webhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		successURL:    successURL,
		cancelURL:     cancelURL,
		currency:      currency,
	}
}

func (g *StripeGateway) CreateCheckoutSession(_ context.Context, params SessionParams) (Session, error) {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.LineItems))
	for _, li := range params.LineItems {
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.currency),
				UnitAmount: stripe.Int64(li.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	sp := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  items,
		SuccessURL: stripe.String(g.successURL),
		CancelURL:  stripe.String(g.cancelURL),
	}
	if params.CustomerEmail != "" {
		sp.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	if params.CouponID != "" {
		sp.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(params.CouponID)},
		}
	}
	// The order id rides along in metadata so the webhook can correlate
	// the session back to the pending order.
	sp.AddMetadata(metadataOrderID, params.OrderID)

	sess, err := session.New(sp)
	if err != nil {
		return Session{}, ErrGateway("create session", err)
	}
	return Session{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) CreatePercentCoupon(_ context.Context, percentOff float64) (string, error) {
	c, err := coupon.New(&stripe.CouponParams{
		PercentOff: stripe.Float64(percentOff),
		Duration:   stripe.String(string(stripe.CouponDurationOnce)),
	})
	if err != nil {
		return "", ErrGateway("create coupon", err)
	}
	return c.ID, nil
}

func (g *StripeGateway) CreateAmountCoupon(_ context.Context, amountOff int64) (string, error) {
	c, err := coupon.New(&stripe.CouponParams{
		AmountOff: stripe.Int64(amountOff),
		Currency:  stripe.String(g.currency),
		Duration:  stripe.String(string(stripe.CouponDurationOnce)),
	})
	if err != nil {
		return "", ErrGateway("create coupon", err)
	}
	return c.ID, nil
}

// VerifyEvent authenticates the payload and lifts out the fields the
// settlement path needs. Only completed checkout sessions carry session
// fields; other event types come back with just the type set.
func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("webhook signature %w: %v", models.ErrBadSignature, err)
	}

	out := Event{Type: string(ev.Type)}
	if out.Type != CheckoutCompleted {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
		return Event{}, fmt.Errorf("decode checkout session: %w", err)
	}
	out.SessionID = sess.ID
	out.OrderID = sess.Metadata[metadataOrderID]
	if sess.PaymentIntent != nil {
		out.PaymentIntent = sess.PaymentIntent.ID
	}
	return out, nil
}
