package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"greenmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles store administration: payment method management, site
// theme configuration and admin password changes.
type AdminHandler struct {
	methods *services.PaymentMethodService
	config  *services.SiteConfigService
	auth    *services.AuthService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	methods *services.PaymentMethodService,
	config *services.SiteConfigService,
	auth *services.AuthService,
) *AdminHandler {
	return &AdminHandler{
		methods: methods,
		config:  config,
		auth:    auth,
	}
}

// RegisterRoutes registers the admin routes under an admin-guarded router.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	methodRoutes := router.Group("/payment-methods")
	methodRoutes.Get("/", h.HandleListPaymentMethods)
	methodRoutes.Post("/:id/toggle", h.HandleTogglePaymentMethod)
	methodRoutes.Put("/order", h.HandleReorderPaymentMethods)

	configRoutes := router.Group("/site-config")
	configRoutes.Get("/", h.HandleGetSiteConfig)
	configRoutes.Put("/", h.HandleUpdateSiteConfig)

	router.Post("/change-password", h.HandleChangePassword)
}

// HandleListPaymentMethods returns every payment method, enabled or not, in
// display order.
func (h *AdminHandler) HandleListPaymentMethods(c *fiber.Ctx) error {
	methods, err := h.methods.ListAll()
	if err != nil {
		log.Printf("Error listing payment methods: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not list payment methods",
			"error":   err.Error(),
		})
	}
	return c.JSON(methods)
}

// HandleTogglePaymentMethod flips one payment method between enabled and
// disabled.
func (h *AdminHandler) HandleTogglePaymentMethod(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid payment method ID",
			"error":   err.Error(),
		})
	}

	method, err := h.methods.Toggle(uint(id))
	if err != nil {
		log.Printf("Error toggling payment method %d: %v", id, err)
		if strings.Contains(err.Error(), "not found") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Payment method with ID %d not found", id),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not toggle payment method",
			"error":   err.Error(),
		})
	}
	return c.JSON(method)
}

// ReorderRequest maps payment method IDs to their new display positions.
type ReorderRequest struct {
	Positions map[uint]int `json:"positions"`
}

// HandleReorderPaymentMethods updates the display order of payment methods.
func (h *AdminHandler) HandleReorderPaymentMethods(c *fiber.Ctx) error {
	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing reorder request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if len(req.Positions) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "positions is required",
		})
	}

	if err := h.methods.Reorder(req.Positions); err != nil {
		log.Printf("Error reordering payment methods: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not reorder payment methods",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Payment methods reordered",
	})
}

// HandleGetSiteConfig returns the site theme values with defaults applied.
func (h *AdminHandler) HandleGetSiteConfig(c *fiber.Ctx) error {
	theme, err := h.config.Theme()
	if err != nil {
		log.Printf("Error loading site config: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load site configuration",
			"error":   err.Error(),
		})
	}
	return c.JSON(theme)
}

// HandleUpdateSiteConfig persists theme values. Unknown keys are ignored.
func (h *AdminHandler) HandleUpdateSiteConfig(c *fiber.Ctx) error {
	var values map[string]string
	if err := c.BodyParser(&values); err != nil {
		log.Printf("Error parsing site config body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.config.UpdateTheme(values); err != nil {
		log.Printf("Error updating site config: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update site configuration",
			"error":   err.Error(),
		})
	}

	theme, err := h.config.Theme()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not load site configuration",
			"error":   err.Error(),
		})
	}
	return c.JSON(theme)
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword changes the authenticated admin's password after
// verifying the current one.
func (h *AdminHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing change password body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	userID, _ := c.Locals("user_id").(string)
	if err := h.auth.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		log.Printf("Error changing password for user %s: %v", userID, err)
		if strings.Contains(err.Error(), "current password") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Current password is incorrect",
			})
		}
		if strings.Contains(err.Error(), "at least") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not change password",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Password changed successfully",
	})
}
