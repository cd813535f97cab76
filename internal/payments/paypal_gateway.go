package payments

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/plutov/paypal/v4"
)

// PayPalGateway implements Gateway over PayPal's two-phase order flow:
// CreateSession opens an order and sends the user to PayPal to approve it,
// Confirm captures the approved order. This is the only variant with a
// trustworthy synchronous confirmation step.
type PayPalGateway struct {
	clientID string
	secret   string
	apiBase  string

	once    sync.Once
	client  *paypal.Client
	initErr error
}

// NewPayPalGateway creates a PayPal gateway. Mode "live" targets production;
// anything else targets the sandbox, matching the provider's own default.
func NewPayPalGateway(clientID, secret, mode string) *PayPalGateway {
	apiBase := paypal.APIBaseSandBox
	if strings.EqualFold(mode, "live") {
		apiBase = paypal.APIBaseLive
	}
	return &PayPalGateway{
		clientID: clientID,
		secret:   secret,
		apiBase:  apiBase,
	}
}

// Name returns the provider identifier used in routes and pending payments.
func (g *PayPalGateway) Name() string { return "paypal" }

func (g *PayPalGateway) ensureClient(ctx context.Context) (*paypal.Client, error) {
	if g.clientID == "" || g.secret == "" {
		return nil, ErrProviderUnavailable
	}
	g.once.Do(func() {
		client, err := paypal.NewClient(g.clientID, g.secret, g.apiBase)
		if err != nil {
			g.initErr = err
			return
		}
		if _, err := client.GetAccessToken(ctx); err != nil {
			g.initErr = err
			return
		}
		g.client = client
	})
	if g.initErr != nil {
		return nil, &TransportError{Provider: g.Name(), Err: g.initErr}
	}
	return g.client, nil
}

// CreateSession opens a PayPal order and returns its approval URL together
// with the order ID used later for capture.
func (g *PayPalGateway) CreateSession(ctx context.Context, req CreateSessionRequest) (*ProviderSession, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]paypal.Item, 0, len(req.Items))
	for _, li := range req.Items {
		items = append(items, paypal.Item{
			Name:        li.Name,
			Description: truncate(li.Description, descriptionLimit),
			UnitAmount: &paypal.Money{
				Currency: req.Currency,
				Value:    li.UnitPrice.StringFixed(2),
			},
			Quantity: strconv.Itoa(li.Quantity),
		})
	}

	units := []paypal.PurchaseUnitRequest{{
		Description: "GreenMarket purchase",
		Amount: &paypal.PurchaseUnitAmount{
			Currency: req.Currency,
			Value:    req.Total.StringFixed(2),
			Breakdown: &paypal.PurchaseUnitAmountBreakdown{
				ItemTotal: &paypal.Money{
					Currency: req.Currency,
					Value:    req.Total.StringFixed(2),
				},
			},
		},
		Items: items,
	}}

	order, err := client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, &paypal.ApplicationContext{
		ReturnURL: req.SuccessURL,
		CancelURL: req.CancelURL,
	})
	if err != nil {
		return nil, &TransportError{Provider: g.Name(), Err: err}
	}

	approvalURL := ""
	for _, link := range order.Links {
		if link.Rel == "approve" {
			approvalURL = link.Href
			break
		}
	}

	return &ProviderSession{
		Provider:    g.Name(),
		Reference:   order.ID,
		RedirectURL: approvalURL,
	}, nil
}

// Confirm captures the approved order. Anything but a completed capture is a
// decline with the provider's stated status as the reason.
func (g *PayPalGateway) Confirm(ctx context.Context, providerRef, payerRef string) (*Outcome, error) {
	client, err := g.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	capture, err := client.CaptureOrder(ctx, providerRef, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, &TransportError{Provider: g.Name(), Err: err}
	}

	if capture.Status == paypal.OrderStatusCompleted {
		return &Outcome{Approved: true}, nil
	}
	return &Outcome{Approved: false, Reason: capture.Status}, nil
}
