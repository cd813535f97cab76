package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"greenmarket/internal/handlers"
	"greenmarket/internal/middleware"
	"greenmarket/internal/models"
	"greenmarket/internal/payments"
	"greenmarket/internal/repositories"
	"greenmarket/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeGateway is a scripted payment provider: it hands out references and
// confirms them with a pre-set outcome, so the full redirect round trip can
// run without a network.
type fakeGateway struct {
	name     string
	approved bool
	reason   string
	counter  int32
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) CreateSession(_ context.Context, req payments.CreateSessionRequest) (*payments.ProviderSession, error) {
	n := atomic.AddInt32(&g.counter, 1)
	ref := fmt.Sprintf("%s_ref_%d", g.name, n)
	return &payments.ProviderSession{
		Provider:    g.name,
		Reference:   ref,
		RedirectURL: "https://pay.example/" + ref,
	}, nil
}

func (g *fakeGateway) Confirm(_ context.Context, _, _ string) (*payments.Outcome, error) {
	return &payments.Outcome{Approved: g.approved, Reason: g.reason}, nil
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	gateway  *fakeGateway
	products repositories.ProductRepository
	orders   repositories.OrderRepository
	auth     *services.AuthService
}

var dbCounter int32

// setupApp builds the full application against an in-memory SQLite database
// and a fake payment gateway.
func setupApp() (*testEnv, error) {
	dsn := fmt.Sprintf("file:handlers%d?mode=memory&cache=shared", atomic.AddInt32(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	err = db.AutoMigrate(
		&models.Product{},
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.PendingPayment{},
		&models.PaymentMethod{},
		&models.SiteConfig{},
		&repositories.CartRecord{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	pendingPaymentRepo := repositories.NewGORMPendingPaymentRepository(db)
	paymentMethodRepo := repositories.NewGORMPaymentMethodRepository(db)
	siteConfigRepo := repositories.NewGORMSiteConfigRepository(db)
	cartStore := repositories.NewGORMCartStore(db)
	uow := repositories.NewGORMUnitOfWork(db)

	gateway := &fakeGateway{name: "stripe", approved: true}
	finalizer := services.NewOrderFinalizer(uow, nil, nil)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(productRepo, cartStore)
	orderService := services.NewOrderService(orderRepo)
	paymentMethodService := services.NewPaymentMethodService(paymentMethodRepo)
	siteConfigService := services.NewSiteConfigService(siteConfigRepo)
	checkoutService := services.NewCheckoutService(
		productRepo,
		cartStore,
		pendingPaymentRepo,
		orderRepo,
		[]payments.Gateway{gateway},
		finalizer,
		nil,
	)

	sessionStore := session.New()

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService, sessionStore)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, cartService, paymentMethodService, sessionStore, "http://localhost:8080")
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminHandler(paymentMethodService, siteConfigService, authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterRoutes(apiV1)
	checkoutHandler.RegisterReturnRoutes(app)

	authed := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterRoutes(authed)

	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	adminHandler.RegisterRoutes(admin)

	return &testEnv{
		app:      app,
		db:       db,
		gateway:  gateway,
		products: productRepo,
		orders:   orderRepo,
		auth:     authService,
	}, nil
}

func seedProduct(env *testEnv, name string, price float64, stock int) *models.Product {
	p := &models.Product{
		ID:    uuid.New().String(),
		Name:  name,
		Price: decimal.NewFromFloat(price),
		Stock: stock,
	}
	if err := env.products.Create(p); err != nil {
		log.Printf("Failed to seed product %s: %v", name, err)
	}
	return p
}

func seedAdmin(env *testEnv, username, password string) {
	admin := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: password,
		Role:     models.RoleAdmin,
	}
	if err := env.auth.RegisterUser(admin); err != nil {
		log.Printf("Failed to seed admin %s: %v", username, err)
	}
}

// doJSON issues a request with an optional JSON body, bearer token and
// session cookie, and returns the response.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token, cookie string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// sessionCookie extracts the session cookie from a response so the next
// request continues the same browser session.
func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == "session_id" {
			return c.Name + "=" + c.Value
		}
	}
	return ""
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var loginResp map[string]string
	decodeBody(t, resp, &loginResp)
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	// Test Registration
	userToRegister := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/auth/register", userToRegister, "", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var registerResp map[string]interface{}
	decodeBody(t, resp, &registerResp)
	assert.Equal(t, "User registered successfully", registerResp["message"])

	// Test Duplicate Registration (username)
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/auth/register", userToRegister, "", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Test Login
	token := login(t, env.app, "testuser", "password123")

	claims, err := env.auth.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])
	assert.Equal(t, models.RoleCustomer, claims["role"])
}

func TestCartLifecycle(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	basil := seedProduct(env, "Basil", 3.50, 10)
	mint := seedProduct(env, "Mint", 2.00, 4)

	// Add two items to a fresh session cart.
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": basil.ID,
		"quantity":   2,
	}, "", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	assert.NotEmpty(t, cookie)
	resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": mint.ID,
		"quantity":   1,
	}, "", cookie)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var cartResp struct {
		Total string `json:"total"`
		Count int    `json:"count"`
	}
	decodeBody(t, resp, &cartResp)
	assert.Equal(t, 3, cartResp.Count)
	assert.Equal(t, "9", cartResp.Total)

	// Overstocked add is rejected and the cart is untouched.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": mint.ID,
		"quantity":   4,
	}, "", cookie)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Update quantity, then remove a line.
	resp = doJSON(t, env.app, http.MethodPut, "/api/v1/cart/items/"+basil.ID, map[string]interface{}{
		"quantity": 5,
	}, "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodDelete, "/api/v1/cart/items/"+mint.ID, nil, "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var afterRemove struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &afterRemove)
	assert.Equal(t, 5, afterRemove.Count)

	// A different session sees an empty cart.
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/cart/", nil, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var otherCart struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &otherCart)
	assert.Equal(t, 0, otherCart.Count)
}

func TestCheckoutFlowApproved(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	basil := seedProduct(env, "Basil", 3.50, 10)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": basil.ID,
		"quantity":   2,
	}, "", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	resp.Body.Close()

	// Begin checkout: the response carries the provider redirect.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/checkout/stripe", nil, "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var beginResp struct {
		Provider    string `json:"provider"`
		ProviderRef string `json:"provider_ref"`
		RedirectURL string `json:"redirect_url"`
	}
	decodeBody(t, resp, &beginResp)
	assert.Equal(t, "stripe", beginResp.Provider)
	assert.NotEmpty(t, beginResp.ProviderRef)
	assert.Contains(t, beginResp.RedirectURL, "pay.example")

	// Stock is untouched until the payment is confirmed.
	p, err := env.products.GetByID(basil.ID)
	assert.NoError(t, err)
	assert.Equal(t, 10, p.Stock)

	// The provider redirects back; the outcome is confirmed and the order
	// finalized.
	resp = doJSON(t, env.app, http.MethodGet, "/payment/execute?provider_ref="+beginResp.ProviderRef, nil, "", cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/payment/success")
	resp.Body.Close()

	p, err = env.products.GetByID(basil.ID)
	assert.NoError(t, err)
	assert.Equal(t, 8, p.Stock)

	order, err := env.orders.GetByProviderRef(beginResp.ProviderRef)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Len(t, order.Items, 1)

	// Replaying the redirect does not create a second order or touch stock.
	resp = doJSON(t, env.app, http.MethodGet, "/payment/execute?provider_ref="+beginResp.ProviderRef, nil, "", cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/payment/success")
	resp.Body.Close()

	p, err = env.products.GetByID(basil.ID)
	assert.NoError(t, err)
	assert.Equal(t, 8, p.Stock)

	// The cart was cleared by finalization.
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/cart/", nil, "", cookie)
	var cartAfter struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &cartAfter)
	assert.Equal(t, 0, cartAfter.Count)
}

func TestCheckoutFlowDeclined(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	env.gateway.approved = false
	env.gateway.reason = "card_declined"
	basil := seedProduct(env, "Basil", 3.50, 10)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": basil.ID,
		"quantity":   2,
	}, "", "")
	cookie := sessionCookie(resp)
	resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/checkout/stripe", nil, "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var beginResp struct {
		ProviderRef string `json:"provider_ref"`
	}
	decodeBody(t, resp, &beginResp)

	// The decline routes to cancel and mutates nothing.
	resp = doJSON(t, env.app, http.MethodGet, "/payment/execute?provider_ref="+beginResp.ProviderRef, nil, "", cookie)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/payment/cancel")
	assert.Contains(t, resp.Header.Get("Location"), "card_declined")
	resp.Body.Close()

	p, err := env.products.GetByID(basil.ID)
	assert.NoError(t, err)
	assert.Equal(t, 10, p.Stock)

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/cart/", nil, "", cookie)
	var cartAfter struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp, &cartAfter)
	assert.Equal(t, 2, cartAfter.Count)

	_, err = env.orders.GetByProviderRef(beginResp.ProviderRef)
	assert.Error(t, err)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/checkout/stripe", nil, "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCheckoutStockConflict(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	basil := seedProduct(env, "Basil", 3.50, 5)

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": basil.ID,
		"quantity":   4,
	}, "", "")
	cookie := sessionCookie(resp)
	resp.Body.Close()

	// Someone else buys most of the stock before checkout.
	p, err := env.products.GetByID(basil.ID)
	assert.NoError(t, err)
	p.Stock = 2
	assert.NoError(t, env.products.Update(p))

	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/checkout/stripe", nil, "", cookie)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflictResp map[string]interface{}
	decodeBody(t, resp, &conflictResp)
	assert.Equal(t, basil.ID, conflictResp["product"])
	assert.Equal(t, float64(2), conflictResp["available"])
}

func TestProductAdminEndpoints(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	seedAdmin(env, "storeadmin", "admin123")
	token := login(t, env.app, "storeadmin", "admin123")

	// Create
	newProduct := map[string]interface{}{
		"name":        "Rosemary",
		"description": "Fresh rosemary bunch",
		"price":       4.25,
		"stock":       15,
	}
	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/admin/products/", newProduct, token, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Product
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)

	// Public read
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/products/"+created.ID, nil, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Product
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)

	// Update
	resp = doJSON(t, env.app, http.MethodPut, "/api/v1/admin/products/"+created.ID, map[string]interface{}{
		"name":        "Rosemary Bunch",
		"description": "Fresh rosemary bunch",
		"price":       4.75,
		"stock":       12,
	}, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Product
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Rosemary Bunch", updated.Name)

	// Delete, then verify it is gone.
	resp = doJSON(t, env.app, http.MethodDelete, "/api/v1/admin/products/"+created.ID, nil, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/products/"+created.ID, nil, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// A customer token is rejected on admin routes.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "shopper",
		"email":    "shopper@example.com",
		"password": "password123",
	}, "", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	customerToken := login(t, env.app, "shopper", "password123")

	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/admin/products/", newProduct, customerToken, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestPaymentMethodAdministration(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	seedAdmin(env, "storeadmin", "admin123")
	token := login(t, env.app, "storeadmin", "admin123")

	// Seed the defaults through the repository layer.
	methodRepo := repositories.NewGORMPaymentMethodRepository(env.db)
	for i, name := range []string{"Stripe (Card)", "PayPal", "Personal Contact"} {
		assert.NoError(t, methodRepo.Create(&models.PaymentMethod{
			Name: name, Enabled: true, DisplayOrder: i + 1,
		}))
	}

	resp := doJSON(t, env.app, http.MethodGet, "/api/v1/admin/payment-methods/", nil, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var methods []models.PaymentMethod
	decodeBody(t, resp, &methods)
	assert.Len(t, methods, 3)

	// Toggle the second method off.
	target := methods[1]
	resp = doJSON(t, env.app, http.MethodPost, fmt.Sprintf("/api/v1/admin/payment-methods/%d/toggle", target.ID), nil, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var toggled models.PaymentMethod
	decodeBody(t, resp, &toggled)
	assert.False(t, toggled.Enabled)

	// The disabled method disappears from the checkout view.
	basil := seedProduct(env, "Basil", 3.50, 10)
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id": basil.ID,
		"quantity":   1,
	}, "", "")
	cookie := sessionCookie(resp)
	resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/checkout/", nil, "", cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var checkoutResp struct {
		PaymentMethods []models.PaymentMethod `json:"payment_methods"`
	}
	decodeBody(t, resp, &checkoutResp)
	assert.Len(t, checkoutResp.PaymentMethods, 2)

	// Reorder and verify the display order flips.
	resp = doJSON(t, env.app, http.MethodPut, "/api/v1/admin/payment-methods/order", map[string]interface{}{
		"positions": map[string]int{
			fmt.Sprint(methods[0].ID): 2,
			fmt.Sprint(methods[2].ID): 1,
		},
	}, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/admin/payment-methods/", nil, token, "")
	var reordered []models.PaymentMethod
	decodeBody(t, resp, &reordered)
	assert.Equal(t, "Personal Contact", reordered[0].Name)
}

func TestSiteConfigAndPasswordChange(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	seedAdmin(env, "storeadmin", "admin123")
	token := login(t, env.app, "storeadmin", "admin123")

	// Defaults are served before anything is stored.
	resp := doJSON(t, env.app, http.MethodGet, "/api/v1/admin/site-config/", nil, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var theme map[string]string
	decodeBody(t, resp, &theme)
	assert.NotEmpty(t, theme["primary_color"])

	// Update one key; unknown keys are ignored.
	resp = doJSON(t, env.app, http.MethodPut, "/api/v1/admin/site-config/", map[string]string{
		"primary_color": "#123456",
		"bogus_key":     "ignored",
	}, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updatedTheme map[string]string
	decodeBody(t, resp, &updatedTheme)
	assert.Equal(t, "#123456", updatedTheme["primary_color"])
	assert.NotContains(t, updatedTheme, "bogus_key")

	// Password change with wrong current password fails.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/admin/change-password", map[string]string{
		"current_password": "wrong",
		"new_password":     "newsecret",
	}, token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Successful change; the old password stops working.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/admin/change-password", map[string]string{
		"current_password": "admin123",
		"new_password":     "newsecret",
	}, token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "storeadmin",
		"password": "admin123",
	}, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	login(t, env.app, "storeadmin", "newsecret")
}

func TestOrderEndpoints(t *testing.T) {
	env, err := setupApp()
	assert.NoError(t, err)
	seedAdmin(env, "storeadmin", "admin123")

	resp := doJSON(t, env.app, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "shopper",
		"email":    "shopper@example.com",
		"password": "password123",
	}, "", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	customerToken := login(t, env.app, "shopper", "password123")
	adminToken := login(t, env.app, "storeadmin", "admin123")

	claims, err := env.auth.ValidateToken(customerToken)
	assert.NoError(t, err)
	customerID := claims["user_id"].(string)

	order := &models.Order{
		ID:          uuid.New().String(),
		UserID:      customerID,
		ProviderRef: "ref-orders-test",
		Items: []models.OrderItem{{
			ProductID: uuid.New().String(),
			Name:      "Basil",
			Quantity:  2,
			UnitPrice: decimal.NewFromFloat(3.50),
			Fulfilled: true,
		}},
		TotalAmount: decimal.NewFromFloat(7.00),
		Status:      models.OrderStatusPaid,
	}
	assert.NoError(t, env.orders.Create(order))

	// The customer sees their own order.
	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/orders/", nil, customerToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []models.Order
	decodeBody(t, resp, &orders)
	assert.Len(t, orders, 1)

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/orders/"+order.ID, nil, customerToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Another customer cannot read it.
	resp = doJSON(t, env.app, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "other",
		"email":    "other@example.com",
		"password": "password123",
	}, "", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	otherToken := login(t, env.app, "other", "password123")

	resp = doJSON(t, env.app, http.MethodGet, "/api/v1/orders/"+order.ID, nil, otherToken, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// The admin updates the status.
	resp = doJSON(t, env.app, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", map[string]string{
		"status": models.OrderStatusShipped,
	}, adminToken, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	updated, err := env.orders.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	// An invalid status is rejected.
	resp = doJSON(t, env.app, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", map[string]string{
		"status": "teleported",
	}, adminToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
