package handlers

import (
	"errors"
	"log"
	"strings"

	"greenmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// CartHandler handles HTTP requests for the session shopping cart.
type CartHandler struct {
	service  *services.CartService
	sessions *session.Store
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, sessions *session.Store) *CartHandler {
	return &CartHandler{
		service:  service,
		sessions: sessions,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/", h.HandleClearCart)
}

// sessionID resolves (and persists) the browser session for this request.
func (h *CartHandler) sessionID(c *fiber.Ctx) (string, error) {
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

// cartResponse is the JSON shape shared by all cart endpoints.
func cartResponse(c *fiber.Ctx, svc *services.CartService, sessionID string) error {
	cart, err := svc.Get(sessionID)
	if err != nil {
		log.Printf("Error loading cart for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"cart":  cart,
		"total": cart.Total(),
		"count": cart.Count(),
	})
}

// HandleGetCart returns the cart with its total and item count.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve session",
			"error":   err.Error(),
		})
	}
	return cartResponse(c, h.service, sessionID)
}

// CartItemRequest represents the request body for adding or updating a line.
type CartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// HandleAddItem adds quantity units of a product to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve session",
			"error":   err.Error(),
		})
	}

	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id is required",
		})
	}

	cart, err := h.service.Add(sessionID, req.ProductID, req.Quantity)
	if err != nil {
		return cartError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Item added to cart",
		"cart":    cart,
		"total":   cart.Total(),
		"count":   cart.Count(),
	})
}

// HandleUpdateItem replaces a line's quantity; zero or less removes it.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve session",
			"error":   err.Error(),
		})
	}

	var req CartItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing cart request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	cart, err := h.service.Update(sessionID, c.Params("productId"), req.Quantity)
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Cart updated",
		"cart":    cart,
		"total":   cart.Total(),
		"count":   cart.Count(),
	})
}

// HandleRemoveItem deletes one line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve session",
			"error":   err.Error(),
		})
	}

	cart, err := h.service.Remove(sessionID, c.Params("productId"))
	if err != nil {
		return cartError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
		"cart":    cart,
		"total":   cart.Total(),
		"count":   cart.Count(),
	})
}

// HandleClearCart empties the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	sessionID, err := h.sessionID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not resolve session",
			"error":   err.Error(),
		})
	}

	if err := h.service.Clear(sessionID); err != nil {
		log.Printf("Error clearing cart for session %s: %v", sessionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Cart cleared",
	})
}

// cartError maps cart validation failures to actionable responses: the user
// is returned to the cart view with a message and nothing is mutated.
func cartError(c *fiber.Ctx, err error) error {
	var insufficient *services.InsufficientStockError
	switch {
	case errors.Is(err, services.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Quantity must be greater than zero",
			"error":   err.Error(),
		})
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   "Not enough stock available",
			"error":     err.Error(),
			"product":   insufficient.ProductID,
			"available": insufficient.Available,
		})
	}
	log.Printf("Cart operation failed: %v", err)
	if strings.Contains(err.Error(), "not found") {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Cart operation failed",
		"error":   err.Error(),
	})
}
