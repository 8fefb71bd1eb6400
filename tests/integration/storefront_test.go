// Package integration provides end-to-end tests for the storefront HTTP API.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/docedelicia/storefront/internal/auth"
	"github.com/docedelicia/storefront/internal/cache/memory"
	"github.com/docedelicia/storefront/internal/domain"
	"github.com/docedelicia/storefront/internal/handler"
	"github.com/docedelicia/storefront/internal/lock"
	"github.com/docedelicia/storefront/internal/metrics"
	"github.com/docedelicia/storefront/internal/repository/sqlite"
	"github.com/docedelicia/storefront/internal/service"
)

const (
	adminEmail    = "admin@docedelicia.com"
	adminPassword = "adminpassword123"
)

// newTestServer assembles the full stack the way the server binary does:
// embedded SQLite store, in-memory cache and locker, the real router.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	ctx := context.Background()
	logger := zerolog.Nop()

	db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(filepath.Join(t.TempDir(), "storefront.db")), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cache := memory.NewCache()
	t.Cleanup(cache.Stop)

	m := metrics.New()

	identity := service.NewIdentityService(
		sqlite.NewUserRepository(db),
		sqlite.NewSessionRepository(db),
		cache,
		service.IdentityConfig{
			SessionTTL:    time.Hour,
			ResetTokenTTL: 15 * time.Minute,
			AdminName:     "Admin",
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
		},
		logger,
	)
	require.NoError(t, identity.EnsureAdmin(ctx))

	catalog := service.NewCatalogService(service.CatalogConfig{}, logger)
	require.NoError(t, catalog.Load(ctx))

	cart := service.NewCartService(sqlite.NewCartRepository(db), catalog, m, logger)

	orders := service.NewOrderService(
		sqlite.NewOrderRepository(db),
		sqlite.NewCartRepository(db),
		lock.NewMemoryLocker(),
		service.OrderConfig{CheckoutLockTTL: 10 * time.Second},
		m,
		logger,
	)

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(identity, m, logger),
		CatalogHandler: handler.NewCatalogHandler(catalog, logger),
		CartHandler:    handler.NewCartHandler(cart, logger),
		OrderHandler:   handler.NewOrderHandler(orders, logger),
		AdminHandler:   handler.NewAdminHandler(orders, identity, logger),
		AuthMiddleware: auth.Middleware(identity, logger),
		Metrics:        m,
		DBHealth:       db,
		Logger:         logger,
	})

	srv := httptest.NewServer(router.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// apiClient drives the JSON API for one shopper or staff member.
type apiClient struct {
	t          *testing.T
	base       string
	token      string
	guestToken string
}

func newAPIClient(t *testing.T, srv *httptest.Server) *apiClient {
	return &apiClient{t: t, base: srv.URL + "/api/v1"}
}

// do sends a request and decodes the shared response envelope. A guest
// token handed out by the cart API is remembered and echoed back.
func (c *apiClient) do(method, path string, body any) (int, handler.Envelope) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.guestToken != "" {
		req.Header.Set("X-Guest-Token", c.guestToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if token := resp.Header.Get("X-Guest-Token"); token != "" {
		c.guestToken = token
	}

	var envelope handler.Envelope
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp.StatusCode, envelope
}

// decodeData re-decodes the envelope's data field into a typed value.
func decodeData(t *testing.T, data any, dst any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

type authPayload struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

type cartPayload struct {
	Lines     []domain.CartLine `json:"lines"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"item_count"`
}

// TestStorefrontHappyPath walks the whole purchase flow: signup, browse,
// fill the cart, check out, then move the order through the dashboard.
func TestStorefrontHappyPath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := newTestServer(t)
	customer := newAPIClient(t, srv)
	admin := newAPIClient(t, srv)

	var product domain.Product
	var orderID string

	t.Run("Signup", func(t *testing.T) {
		status, envelope := customer.do(http.MethodPost, "/auth/signup", map[string]string{
			"name":     "Ana",
			"email":    "ana@example.com",
			"password": "segredo123",
		})
		require.Equal(t, http.StatusCreated, status)

		var out authPayload
		decodeData(t, envelope.Data, &out)
		require.NotEmpty(t, out.Token)
		require.Equal(t, domain.RoleCustomer, out.User.Role)
		customer.token = out.Token
	})

	t.Run("BrowseCatalog", func(t *testing.T) {
		status, envelope := customer.do(http.MethodGet, "/products", nil)
		require.Equal(t, http.StatusOK, status)

		var products []domain.Product
		decodeData(t, envelope.Data, &products)
		require.NotEmpty(t, products)
		product = products[0]
	})

	t.Run("AddToCart", func(t *testing.T) {
		status, envelope := customer.do(http.MethodPost, "/cart/items", map[string]any{
			"product_id": product.ID,
			"quantity":   2,
		})
		require.Equal(t, http.StatusOK, status)

		var cart cartPayload
		decodeData(t, envelope.Data, &cart)
		require.Len(t, cart.Lines, 1)
		require.Equal(t, 2, cart.ItemCount)
		require.Equal(t, 2*product.Price, cart.Total)
	})

	t.Run("Checkout", func(t *testing.T) {
		status, envelope := customer.do(http.MethodPost, "/checkout", map[string]any{
			"shipping_address": map[string]string{
				"street": "Rua das Flores",
				"number": "12",
				"city":   "São Paulo",
				"state":  "SP",
				"zip":    "01000-000",
			},
			"customer_info": map[string]string{
				"name": "Ana",
				"cpf":  "123.456.789-00",
			},
		})
		require.Equal(t, http.StatusCreated, status)

		var order domain.Order
		decodeData(t, envelope.Data, &order)
		require.Equal(t, domain.StatusReceived, order.Status)
		require.Equal(t, 2*product.Price, order.Total)
		require.Equal(t, domain.PaymentPix, order.PaymentMethod)
		orderID = order.ID
	})

	t.Run("CartEmptyAfterCheckout", func(t *testing.T) {
		status, envelope := customer.do(http.MethodGet, "/cart", nil)
		require.Equal(t, http.StatusOK, status)

		var cart cartPayload
		decodeData(t, envelope.Data, &cart)
		require.Empty(t, cart.Lines)
	})

	t.Run("CheckoutEmptyCartRejected", func(t *testing.T) {
		status, _ := customer.do(http.MethodPost, "/checkout", map[string]any{})
		require.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("AdminLogin", func(t *testing.T) {
		status, envelope := admin.do(http.MethodPost, "/auth/login", map[string]string{
			"email":    adminEmail,
			"password": adminPassword,
		})
		require.Equal(t, http.StatusOK, status)

		var out authPayload
		decodeData(t, envelope.Data, &out)
		require.Equal(t, domain.RoleAdmin, out.User.Role)
		admin.token = out.Token
	})

	t.Run("CustomerCannotReachDashboard", func(t *testing.T) {
		status, _ := customer.do(http.MethodGet, "/admin/orders", nil)
		require.Equal(t, http.StatusForbidden, status)
	})

	t.Run("AdminMovesOrder", func(t *testing.T) {
		status, envelope := admin.do(http.MethodPut, "/admin/orders/"+orderID+"/status", map[string]string{
			"status": "Preparing",
		})
		require.Equal(t, http.StatusOK, status)

		var order domain.Order
		decodeData(t, envelope.Data, &order)
		require.Equal(t, domain.StatusPreparing, order.Status)
	})

	t.Run("CustomerSeesNewStatus", func(t *testing.T) {
		status, envelope := customer.do(http.MethodGet, "/orders/"+orderID, nil)
		require.Equal(t, http.StatusOK, status)

		var order domain.Order
		decodeData(t, envelope.Data, &order)
		require.Equal(t, domain.StatusPreparing, order.Status)
	})

	t.Run("AdminStats", func(t *testing.T) {
		status, envelope := admin.do(http.MethodGet, "/admin/stats", nil)
		require.Equal(t, http.StatusOK, status)

		var stats struct {
			TotalOrders int64   `json:"total_orders"`
			TotalSales  float64 `json:"total_sales"`
		}
		decodeData(t, envelope.Data, &stats)
		require.Equal(t, int64(1), stats.TotalOrders)
		require.Equal(t, 2*product.Price, stats.TotalSales)
	})
}

// TestGuestCart covers the anonymous shopper: a guest token scopes the
// cart, and checkout stays closed until the shopper logs in.
func TestGuestCart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	srv := newTestServer(t)
	guest := newAPIClient(t, srv)

	status, envelope := guest.do(http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, status)
	var products []domain.Product
	decodeData(t, envelope.Data, &products)
	require.NotEmpty(t, products)

	t.Run("GuestTokenHandedOut", func(t *testing.T) {
		status, _ := guest.do(http.MethodGet, "/cart", nil)
		require.Equal(t, http.StatusOK, status)
		require.NotEmpty(t, guest.guestToken)
	})

	t.Run("GuestCartPersists", func(t *testing.T) {
		status, _ := guest.do(http.MethodPost, "/cart/items", map[string]any{
			"product_id": products[0].ID,
			"quantity":   1,
		})
		require.Equal(t, http.StatusOK, status)

		status, envelope := guest.do(http.MethodGet, "/cart", nil)
		require.Equal(t, http.StatusOK, status)

		var cart cartPayload
		decodeData(t, envelope.Data, &cart)
		require.Len(t, cart.Lines, 1)
	})

	t.Run("CheckoutRequiresLogin", func(t *testing.T) {
		status, _ := guest.do(http.MethodPost, "/checkout", map[string]any{})
		require.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("OtherGuestSeesOwnCart", func(t *testing.T) {
		other := newAPIClient(t, srv)
		status, envelope := other.do(http.MethodGet, "/cart", nil)
		require.Equal(t, http.StatusOK, status)

		var cart cartPayload
		decodeData(t, envelope.Data, &cart)
		require.Empty(t, cart.Lines)
	})
}
