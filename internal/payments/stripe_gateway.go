package payments

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
)

// descriptionLimit is the provider's limit for line item descriptions.
const descriptionLimit = 500

// StripeGateway implements Gateway over Stripe hosted checkout. The hosted
// page handles card entry and redirects the browser back; we still confirm
// the session server-side before finalizing, because the redirect alone
// carries no proof of payment.
type StripeGateway struct {
	apiKey string
}

// NewStripeGateway creates a Stripe gateway. The key is validated lazily so
// a store without Stripe configured can still boot.
func NewStripeGateway(apiKey string) *StripeGateway {
	return &StripeGateway{
		apiKey: apiKey,
	}
}

// Name returns the provider identifier used in routes and pending payments.
func (g *StripeGateway) Name() string { return "stripe" }

// CreateSession opens a Stripe checkout session and returns its hosted URL.
func (g *StripeGateway) CreateSession(ctx context.Context, req CreateSessionRequest) (*ProviderSession, error) {
	if !strings.HasPrefix(g.apiKey, "sk_") {
		return nil, ErrProviderUnavailable
	}
	stripe.Key = g.apiKey

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.Items))
	for _, item := range req.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(strings.ToLower(req.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(item.Name),
					Description: stripe.String(truncate(item.Description, descriptionLimit)),
				},
				UnitAmount: stripe.Int64(item.UnitAmountCents()),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	// Stripe substitutes the session ID into the return URL, which is how
	// the execute endpoint learns which session to confirm.
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(req.SuccessURL + "?provider_ref={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx

	s, err := checkoutsession.New(params)
	if err != nil {
		return nil, &TransportError{Provider: g.Name(), Err: err}
	}

	return &ProviderSession{
		Provider:    g.Name(),
		Reference:   s.ID,
		RedirectURL: s.URL,
	}, nil
}

// Confirm retrieves the checkout session and reports whether Stripe has
// collected payment for it. The payer reference is unused; Stripe's session
// ID alone identifies the payment.
func (g *StripeGateway) Confirm(ctx context.Context, providerRef, _ string) (*Outcome, error) {
	if !strings.HasPrefix(g.apiKey, "sk_") {
		return nil, ErrProviderUnavailable
	}
	stripe.Key = g.apiKey

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := checkoutsession.Get(providerRef, params)
	if err != nil {
		return nil, &TransportError{Provider: g.Name(), Err: err}
	}

	if s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		return &Outcome{Approved: true}, nil
	}
	return &Outcome{Approved: false, Reason: string(s.PaymentStatus)}, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
