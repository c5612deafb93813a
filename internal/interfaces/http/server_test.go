package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryOrders struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	nextID uint
}

func (r *memoryOrders) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.OrderNumber]; ok {
		return order.ErrDuplicateOrderNumber
	}
	r.nextID++
	o.ID = r.nextID
	stored := *o
	r.orders[o.OrderNumber] = &stored
	return nil
}

func (r *memoryOrders) GetByNumber(_ context.Context, orderNumber string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderNumber]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	out := *o
	out.StatusHistory = append([]order.OrderStatusHistory(nil), o.StatusHistory...)
	return &out, nil
}

func (r *memoryOrders) ListByUser(_ context.Context, userID string, status order.OrderStatus) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []order.Order{}
	for _, o := range r.orders {
		if o.UserID == userID && (status == "" || o.Status == status) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlacedAt.After(out[j].PlacedAt) })
	return out, nil
}

func (r *memoryOrders) UpdateStatus(_ context.Context, o *order.Order, event order.OrderStatusHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[o.OrderNumber]
	if !ok {
		return order.ErrOrderNotFound
	}
	stored.Status = o.Status
	stored.ShippedAt = o.ShippedAt
	stored.DeliveredAt = o.DeliveredAt
	stored.StatusHistory = append(stored.StatusHistory, event)
	return nil
}

type fakeReceipts struct{}

func (fakeReceipts) GenerateReceipt(o *order.Order) (*bytes.Buffer, error) {
	return bytes.NewBufferString("%PDF-1.4 " + o.OrderNumber), nil
}

type pingOK struct{}

func (pingOK) Health(context.Context) error { return nil }

type testAPI struct {
	t        *testing.T
	handler  http.Handler
	verifier *auth.TokenVerifier
	mr       *miniredis.Miniredis
	cookies  []*http.Cookie
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "Storefront Backend",
			Version:     "test",
			Environment: "development",
			StoreName:   "TrendLama",
		},
		Server: config.ServerConfig{
			RequestTimeout: 5 * time.Second,
		},
		Identity: config.IdentityConfig{
			Secret: "test-identity-secret-at-least-32-chars",
		},
		Security: config.SecurityConfig{
			RateLimitPerMinute: 1000,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		Checkout: config.CheckoutConfig{
			CartTTL:             time.Hour,
			DraftTTL:            time.Hour,
			ConfirmationTTL:     time.Hour,
			SessionIdleTimeout:  time.Hour,
			DeliveryDays:        5,
			BreakerMaxFailures:  5,
			BreakerOpenDuration: time.Minute,
		},
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	log := logger.Discard()
	entry := log.WithField("test", t.Name())

	catalog, err := product.NewCatalog(product.DefaultProducts())
	require.NoError(t, err)

	sessions := cart.NewSessions(cart.NewRedisPersister(client, time.Hour), entry, time.Hour)
	carts := cart.NewService(sessions, catalog, entry)
	orders := order.NewService(&memoryOrders{orders: map[string]*order.Order{}}, order.NewRedisConfirmationStore(client, time.Hour), 5, entry)
	pricing := checkout.DefaultPricing()
	gateway := checkout.NewBreakerGateway(checkout.NewSimulatedGateway(0), 5, time.Minute, entry)

	verifier := auth.NewTokenVerifier(cfg.Identity)
	deps := &routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Verifier: verifier,
		Catalog:  catalog,
		Carts:    carts,
		Checkout: checkout.NewService(carts, checkout.NewRedisDraftStore(client, time.Hour), orders, gateway, pricing, entry),
		Orders:   orders,
		Receipts: fakeReceipts{},
		Pricing:  pricing,
		Payments: gateway,
	}

	server := NewServer(cfg, deps, client, map[string]HealthChecker{"redis": pingOK{}})
	return &testAPI{t: t, handler: server.Handler(), verifier: verifier, mr: mr}
}

func (a *testAPI) token(subject string, admin bool) string {
	a.t.Helper()
	token, err := a.verifier.Sign(subject, subject+"@example.com", admin, time.Hour)
	require.NoError(a.t, err)
	return token
}

func (a *testAPI) do(method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, cookie := range a.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)

	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		a.cookies = cookies
	}

	var decoded map[string]any
	if w.Header().Get("Content-Type") != "application/pdf" && w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

func data(body map[string]any) map[string]any {
	return body["data"].(map[string]any)
}

func shippingBody() map[string]string {
	return map[string]string{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"phone":   "5551234567",
		"address": "123 Main St",
		"city":    "Springfield",
	}
}

func paymentBody(card string) map[string]string {
	return map[string]string{
		"name_on_card":    "Jane Doe",
		"card_number":     card,
		"expiration_date": "12/29",
	}
}

func (a *testAPI) fillCart() {
	a.t.Helper()
	w, _ := a.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 1, "size": "M", "color": "#FF0000"}, "")
	require.Equal(a.t, http.StatusOK, w.Code)
	for i := 0; i < 2; i++ {
		w, _ = a.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 2, "size": "42", "color": "#808080"}, "")
		require.Equal(a.t, http.StatusOK, w.Code)
	}
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])

	w, body = api.do(http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, "closed", body["payment_gateway"])

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestProductEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(http.MethodGet, "/api/v1/products?category=shoes&sort=price_desc", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	products := body["data"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, "69.90", products[0].(map[string]any)["price"])

	w, body = api.do(http.MethodGet, "/api/v1/products/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Under Armour StormFleece", data(body)["title"])

	w, _ = api.do(http.MethodGet, "/api/v1/products/99", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/products/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = api.do(http.MethodGet, "/api/v1/products/category/unknown", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])

	w, body = api.do(http.MethodGet, "/api/v1/products/categories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"hoodies", "shirts", "shoes"}, body["data"])
}

func TestCartEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(http.MethodGet, "/api/v1/cart", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, api.cookies, 1)
	assert.Equal(t, "session_id", api.cookies[0].Name)
	assert.Equal(t, true, data(body)["hydrated"])
	assert.Equal(t, float64(0), data(body)["count"])
	assert.Equal(t, "0.00", data(body)["summary"].(map[string]any)["total"])

	api.fillCart()

	w, body = api.do(http.MethodGet, "/api/v1/cart", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	cartData := data(body)
	assert.Len(t, cartData["items"], 2)
	assert.Equal(t, float64(3), cartData["count"])
	summary := cartData["summary"].(map[string]any)
	assert.Equal(t, "169.70", summary["subtotal"])
	assert.Equal(t, "16.97", summary["discount"])
	assert.Equal(t, "10.00", summary["shipping_fee"])
	assert.Equal(t, "162.73", summary["total"])

	// Stored under the session key as {"cart":[...]}
	stored, err := api.mr.Get("cart-storage:" + api.cookies[0].Value)
	require.NoError(t, err)
	assert.Contains(t, stored, `"cart":[`)

	w, body = api.do(http.MethodPut, "/api/v1/cart/items", map[string]any{"product_id": 2, "size": "42", "color": "#808080", "quantity": 0}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), data(body)["count"])

	w, body = api.do(http.MethodDelete, "/api/v1/cart/items", map[string]any{"product_id": 1, "size": "M", "color": "#FF0000"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), data(body)["count"])

	w, body = api.do(http.MethodGet, "/api/v1/cart/count", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), data(body)["count"])

	w, body = api.do(http.MethodGet, "/api/v1/cart/debug", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cart-storage:"+api.cookies[0].Value, data(body)["storage_key"])

	w, _ = api.do(http.MethodDelete, "/api/v1/cart", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, body = api.do(http.MethodGet, "/api/v1/cart/count", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), data(body)["count"])
}

func TestCartRejectsInvalidSelections(t *testing.T) {
	api := newTestAPI(t)

	w, body := api.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 1, "size": "XXL", "color": "#FF0000"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, body["details"], "size")

	w, _ = api.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": 42, "size": "M", "color": "#FF0000"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = api.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"size": "M"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartStorageUnavailable(t *testing.T) {
	api := newTestAPI(t)
	api.mr.Close()

	w, body := api.do(http.MethodGet, "/api/v1/cart", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Service temporarily unavailable, please retry", body["error"])
}

func TestCheckoutFlow(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart()
	userToken := api.token("user_123", false)

	w, body := api.do(http.MethodGet, "/api/v1/checkout?step=9", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), data(body)["step"])

	w, body = api.do(http.MethodPost, "/api/v1/checkout/advance?step=1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["transition"].(map[string]any)["allowed"])
	assert.Equal(t, float64(2), data(body)["step"])

	// Shipping not validated yet
	w, body = api.do(http.MethodPost, "/api/v1/checkout/advance?step=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["transition"].(map[string]any)["allowed"])
	assert.Equal(t, float64(2), data(body)["step"])

	invalid := shippingBody()
	invalid["email"] = "not-an-email"
	w, body = api.do(http.MethodPost, "/api/v1/checkout/shipping", invalid, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid email address", body["details"].(map[string]any)["email"])

	w, body = api.do(http.MethodPost, "/api/v1/checkout/shipping", shippingBody(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), data(body)["step"])

	w, body = api.do(http.MethodPost, "/api/v1/checkout/payment", paymentBody("4242 4242 4242 4242"), userToken)
	require.Equal(t, http.StatusCreated, w.Code, body)
	assert.Equal(t, "/order-confirmation", body["redirect"])
	snapshot := data(body)
	orderNumber := snapshot["order_number"].(string)
	assert.Regexp(t, `^ORD-\d{6}$`, orderNumber)
	assert.Equal(t, "$162.73", snapshot["total"])
	assert.Equal(t, "•••• •••• •••• 4242", snapshot["payment_method"])

	w, body = api.do(http.MethodGet, "/api/v1/cart/count", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), data(body)["count"])

	// Confirmation is read once
	w, body = api.do(http.MethodGet, "/api/v1/orders/confirmation", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orderNumber, data(body)["order_number"])
	w, _ = api.do(http.MethodGet, "/api/v1/orders/confirmation", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = api.do(http.MethodGet, "/api/v1/orders?status=processing", nil, userToken)
	require.Equal(t, http.StatusOK, w.Code)
	history := body["data"].([]any)
	require.Len(t, history, 1)
	assert.Equal(t, orderNumber, history[0].(map[string]any)["order_number"])

	w, body = api.do(http.MethodGet, "/api/v1/orders/track/"+orderNumber, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	events := data(body)["events"].([]any)
	require.Len(t, events, 1)
	assert.Equal(t, "Order Processed", events[0].(map[string]any)["status"])

	w, _ = api.do(http.MethodGet, "/api/v1/orders/"+orderNumber+"/receipt", nil, userToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-"+orderNumber+".pdf")

	// Someone else's receipt
	w, _ = api.do(http.MethodGet, "/api/v1/orders/"+orderNumber+"/receipt", nil, api.token("user_456", false))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckoutPaymentDeclinedKeepsCart(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart()

	w, _ := api.do(http.MethodPost, "/api/v1/checkout/shipping", shippingBody(), "")
	require.Equal(t, http.StatusOK, w.Code)

	w, body := api.do(http.MethodPost, "/api/v1/checkout/payment", paymentBody(checkout.DeclinedTestCard), "")
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, checkout.ErrPaymentDeclined.Error(), body["error"])

	w, body = api.do(http.MethodGet, "/api/v1/cart/count", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), data(body)["count"])
}

func TestCheckoutPaymentValidation(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart()

	body := paymentBody("4242424242424242")
	body["expiration_date"] = "13/29"
	w, resp := api.do(http.MethodPost, "/api/v1/checkout/payment", body, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	details := resp["details"].(map[string]any)
	assert.Equal(t, "Invalid card number format", details["card_number"])
	assert.Equal(t, "Invalid expiration date (MM/YY)", details["expiration_date"])
}

func TestCheckoutPaymentWithoutShipping(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart()

	w, _ := api.do(http.MethodPost, "/api/v1/checkout/payment", paymentBody("4242 4242 4242 4242"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderHistoryRequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.do(http.MethodGet, "/api/v1/orders", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodGet, "/api/v1/orders", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := api.do(http.MethodGet, "/api/v1/orders?status=lost", nil, api.token("user_123", false))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, body["details"], "status")
}

func TestAdminUpdatesOrderStatus(t *testing.T) {
	api := newTestAPI(t)
	api.fillCart()

	w, _ := api.do(http.MethodPost, "/api/v1/checkout/shipping", shippingBody(), "")
	require.Equal(t, http.StatusOK, w.Code)
	w, body := api.do(http.MethodPost, "/api/v1/checkout/payment", paymentBody("4242 4242 4242 4242"), "")
	require.Equal(t, http.StatusCreated, w.Code)
	orderNumber := data(body)["order_number"].(string)

	path := "/api/v1/admin/orders/" + orderNumber + "/status"
	update := map[string]string{"status": "shipped", "location": "New York, NY"}

	w, _ = api.do(http.MethodPut, path, update, api.token("user_123", false))
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken := api.token("admin_1", true)
	w, body = api.do(http.MethodPut, path, update, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	tracking := data(body)
	assert.Equal(t, "shipped", tracking["status"])
	assert.NotEmpty(t, tracking["tracking_number"])

	w, _ = api.do(http.MethodPut, path, map[string]string{"status": "processing"}, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(http.MethodPut, "/api/v1/admin/orders/ORD-999999/status", update, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
