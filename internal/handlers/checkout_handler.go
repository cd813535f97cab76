package handlers

import (
	"errors"
	"log"
	"net/url"

	"greenmarket/internal/payments"
	"greenmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// CheckoutHandler handles the checkout and payment-return endpoints.
type CheckoutHandler struct {
	checkout *services.CheckoutService
	cart     *services.CartService
	methods  *services.PaymentMethodService
	sessions *session.Store
	baseURL  string
}

// NewCheckoutHandler creates a new CheckoutHandler. baseURL is the externally
// reachable origin used to build the provider return URLs.
func NewCheckoutHandler(
	checkout *services.CheckoutService,
	cart *services.CartService,
	methods *services.PaymentMethodService,
	sessions *session.Store,
	baseURL string,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		cart:     cart,
		methods:  methods,
		sessions: sessions,
		baseURL:  baseURL,
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Get("/", h.HandleGetCheckout)
	checkoutRoutes.Post("/stripe", h.HandleBeginStripe)
	checkoutRoutes.Post("/paypal", h.HandleBeginPayPal)
}

// RegisterReturnRoutes registers the provider redirect endpoints. These sit
// outside the API group because the provider calls them directly.
func (h *CheckoutHandler) RegisterReturnRoutes(app *fiber.App) {
	app.Get("/payment/execute", h.HandleExecute)
	app.Get("/payment/success", h.HandleSuccess)
	app.Get("/payment/cancel", h.HandleCancel)
}

func (h *CheckoutHandler) sessionID(c *fiber.Ctx) (string, error) {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return "", err
	}
	id := sess.ID()
	if err := sess.Save(); err != nil {
		return "", err
	}
	return id, nil
}

// HandleGetCheckout returns the validated checkout summary and the payment
// methods currently enabled, in display order.
func (h *CheckoutHandler) HandleGetCheckout(c *fiber.Ctx) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve session",
			"error":   err.Error(),
		})
	}

	cart, err := h.cart.Get(sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load cart",
			"error":   err.Error(),
		})
	}

	summary, err := h.checkout.Validate(cart)
	if err != nil {
		return checkoutError(c, err)
	}

	methods, err := h.methods.ListEnabled()
	if err != nil {
		log.Printf("Error listing payment methods: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not list payment methods",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"items":           summary.Items,
		"total":           summary.Total,
		"payment_methods": methods,
	})
}

// HandleBeginStripe opens a Stripe checkout session for the current cart.
func (h *CheckoutHandler) HandleBeginStripe(c *fiber.Ctx) error {
	return h.begin(c, "stripe")
}

// HandleBeginPayPal opens a PayPal order for the current cart.
func (h *CheckoutHandler) HandleBeginPayPal(c *fiber.Ctx) error {
	return h.begin(c, "paypal")
}

func (h *CheckoutHandler) begin(c *fiber.Ctx, provider string) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve session",
			"error":   err.Error(),
		})
	}

	userID := ""
	if v, ok := c.Locals("user_id").(string); ok {
		userID = v
	}

	// The provider sends the user back to /payment/execute, where the
	// outcome is confirmed server-side before any order exists.
	result, err := h.checkout.Begin(
		c.UserContext(),
		sessionID,
		userID,
		provider,
		h.baseURL+"/payment/execute",
		h.baseURL+"/payment/cancel",
	)
	if err != nil {
		return checkoutError(c, err)
	}

	return c.JSON(fiber.Map{
		"provider":     result.Provider,
		"provider_ref": result.ProviderRef,
		"redirect_url": result.RedirectURL,
	})
}

// HandleExecute is the provider return endpoint. The query carries either
// paymentId (PayPal) or provider_ref (Stripe), plus PayerID for PayPal. The
// redirect alone proves nothing: the outcome is always re-read from the
// provider before any order is created.
func (h *CheckoutHandler) HandleExecute(c *fiber.Ctx) error {
	providerRef := c.Query("provider_ref")
	if providerRef == "" {
		// PayPal appends the order ID as "token" on its return redirect.
		providerRef = c.Query("token")
	}
	if providerRef == "" {
		providerRef = c.Query("paymentId")
	}
	if providerRef == "" {
		return c.Redirect("/payment/cancel?reason=" + url.QueryEscape("missing payment reference"))
	}
	payerRef := c.Query("PayerID")

	order, err := h.checkout.Confirm(c.UserContext(), providerRef, payerRef)
	if err != nil {
		var declined *services.DeclinedError
		var conflict *services.StockConflictError
		reason := "payment could not be completed"
		switch {
		case errors.As(err, &declined):
			reason = declined.Reason
		case errors.As(err, &conflict):
			reason = "an item sold out before your payment completed"
		case errors.Is(err, services.ErrPaymentConsumed):
			reason = "this payment was already resolved"
		case errors.Is(err, payments.ErrProviderUnavailable):
			reason = "payment provider is not available"
		}
		log.Printf("Payment %s failed to confirm: %v", providerRef, err)
		return c.Redirect("/payment/cancel?reason=" + url.QueryEscape(reason))
	}

	return c.Redirect("/payment/success?order=" + url.QueryEscape(order.ID))
}

// HandleSuccess reports a completed order after the provider redirect.
func (h *CheckoutHandler) HandleSuccess(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Payment completed. Thank you for your order!",
		"order":   c.Query("order"),
	})
}

// HandleCancel reports a cancelled or failed payment. The cart is intact.
func (h *CheckoutHandler) HandleCancel(c *fiber.Ctx) error {
	reason := c.Query("reason")
	if reason == "" {
		reason = "payment was cancelled"
	}
	return c.JSON(fiber.Map{
		"message": "Payment not completed. Your cart has been kept.",
		"reason":  reason,
	})
}

// checkoutError maps checkout failures onto HTTP statuses.
func checkoutError(c *fiber.Ctx, err error) error {
	var conflict *services.StockConflictError
	var declined *services.DeclinedError
	var transport *payments.TransportError
	switch {
	case errors.Is(err, services.ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Cart is empty",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrUnknownProvider):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown payment provider",
			"error":   err.Error(),
		})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   "Not enough stock available",
			"error":     err.Error(),
			"product":   conflict.ProductID,
			"available": conflict.Available,
		})
	case errors.As(err, &declined):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"message": "Payment was declined",
			"error":   err.Error(),
		})
	case errors.Is(err, payments.ErrProviderUnavailable), errors.As(err, &transport):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Payment provider is not available",
			"error":   err.Error(),
		})
	}
	log.Printf("Checkout failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Checkout failed",
		"error":   err.Error(),
	})
}
