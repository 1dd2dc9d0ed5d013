package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/your-org/fashion-store/internal/domain/product"
	"github.com/your-org/fashion-store/internal/infrastructure/database/postgres"
	redisdb "github.com/your-org/fashion-store/internal/infrastructure/database/redis"
	"github.com/your-org/fashion-store/internal/pkg/email"
	"github.com/your-org/fashion-store/internal/pkg/logger"
	"github.com/your-org/fashion-store/internal/pkg/testutil"
	"gorm.io/gorm"
)

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

// client keeps the session cookie and bearer token between calls, like a
// browser tab would
type client struct {
	t       *testing.T
	handler http.Handler
	cookies []*http.Cookie
	token   string
}

func (c *client) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		c.cookies = cookies
	}

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (c *client) login(login, password string) {
	c.t.Helper()

	w, env := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"login": login, "password": password})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &data))
	c.token = data.Tokens.AccessToken
}

type ServerSuite struct {
	suite.Suite
	db     *gorm.DB
	server *Server
	mr     *miniredis.Miniredis
}

func TestServerSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	t := s.T()
	cfg := testutil.Config()
	log := logger.Discard()

	s.db = testutil.NewDB(t, postgres.Models()...)
	require.NoError(t, postgres.NewMigration(s.db, cfg, log).SeedInitialData())

	s.mr = miniredis.RunT(t)
	cache := redisdb.NewFromClient(goredis.NewClient(&goredis.Options{Addr: s.mr.Addr()}))

	mailer, err := email.NewEmailService(cfg, log)
	require.NoError(t, err)
	t.Cleanup(mailer.Close)

	s.server = NewServer(cfg, log, postgres.NewFromGorm(s.db), cache, mailer)
}

func (s *ServerSuite) newClient() *client {
	return &client{t: s.T(), handler: s.server.Handler()}
}

func (s *ServerSuite) variantBySKU(sku string) product.ProductVariant {
	var v product.ProductVariant
	require.NoError(s.T(), s.db.Where("sku = ?", sku).First(&v).Error)
	return v
}

func (s *ServerSuite) TestHealth() {
	c := s.newClient()

	w, _ := c.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"redis":"ok"`)

	w, _ = c.do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *ServerSuite) TestCatalogBrowsing() {
	c := s.newClient()

	w, env := c.do(http.MethodGet, "/api/v1/products?search=dress&limit=10", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var list product.ProductListResponse
	s.Require().NoError(json.Unmarshal(env.Data, &list))
	s.Len(list.Products, 2)
	s.Equal(int64(2), list.Pagination.Total)

	w, _ = c.do(http.MethodGet, "/api/v1/products/abc", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, env = c.do(http.MethodGet, "/api/v1/products/999", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("product not found", env.Error)

	w, _ = c.do(http.MethodGet, "/api/v1/categories", nil)
	s.Equal(http.StatusOK, w.Code)

	w, env = c.do(http.MethodGet, "/api/v1/products/filters", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"Navy"`)
}

func (s *ServerSuite) TestCartSurvivesLoginAndCheckout() {
	c := s.newClient()
	trench := s.variantBySKU("TRENCH-BLA-M")

	// Anonymous visitors can fill a cart
	w, _ := c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"variant_id": trench.ID, "quantity": 2})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	// More than the remaining stock is rejected once merged
	w, env := c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"variant_id": trench.ID, "quantity": 2})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("insufficient_stock", env.Code)

	// Checkout needs an account
	w, _ = c.do(http.MethodPost, "/api/v1/checkout", map[string]string{})
	s.Equal(http.StatusUnauthorized, w.Code)

	c.login("jane@example.com", "customer123")

	w, env = c.do(http.MethodPost, "/api/v1/checkout", map[string]string{"phone": "555-0100"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var placed struct {
		ID              uint            `json:"id"`
		Status          string          `json:"status"`
		TotalAmount     decimal.Decimal `json:"total_amount"`
		ShippingAddress string          `json:"shipping_address"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &placed))
	s.Equal("pending", placed.Status)
	s.True(decimal.RequireFromString("378").Equal(placed.TotalAmount))
	s.Equal("1 Fashion Avenue", placed.ShippingAddress)
	s.Equal(1, s.variantBySKU("TRENCH-BLA-M").StockQuantity)

	// The cart was emptied by the order
	w, env = c.do(http.MethodGet, "/api/v1/cart", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"item_count":0`)

	w, env = c.do(http.MethodPost, "/api/v1/checkout", map[string]string{})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("empty_cart", env.Code)

	// Order history and cancellation
	w, _ = c.do(http.MethodGet, "/api/v1/orders", nil)
	s.Equal(http.StatusOK, w.Code)

	w, env = c.do(http.MethodPost, "/api/v1/orders/"+itoa(placed.ID)+"/cancel", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(string(env.Data), `"status":"cancelled"`)
	s.Equal(3, s.variantBySKU("TRENCH-BLA-M").StockQuantity)

	w, _ = c.do(http.MethodPost, "/api/v1/orders/"+itoa(placed.ID)+"/cancel", nil)
	s.Equal(http.StatusConflict, w.Code)

	w, _ = c.do(http.MethodGet, "/api/v1/orders/"+itoa(placed.ID)+"/invoice/preview", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "Classic Trench Coat")
}

func (s *ServerSuite) TestBuyNowLeavesCartAlone() {
	c := s.newClient()
	c.login("jane@example.com", "customer123")

	linen := s.variantBySKU("LINEN-WHI-M")
	jeans := s.variantBySKU("JEAN-NAV-M")

	w, _ := c.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"variant_id": linen.ID, "quantity": 1})
	s.Require().Equal(http.StatusOK, w.Code)
	w, _ = c.do(http.MethodPost, "/api/v1/cart/buy-now", map[string]interface{}{"variant_id": jeans.ID, "quantity": 1})
	s.Require().Equal(http.StatusOK, w.Code)

	w, env := c.do(http.MethodPost, "/api/v1/checkout", map[string]interface{}{"buy_now": true})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Contains(string(env.Data), "Straight Leg Jeans")

	w, env = c.do(http.MethodGet, "/api/v1/cart", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), "Linen Shirt")
}

func (s *ServerSuite) TestAdminRoutesRequireAdminRole() {
	customer := s.newClient()
	w, _ := customer.do(http.MethodGet, "/api/v1/admin/dashboard", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	customer.login("jane@example.com", "customer123")
	w, _ = customer.do(http.MethodGet, "/api/v1/admin/dashboard", nil)
	s.Equal(http.StatusForbidden, w.Code)

	admin := s.newClient()
	admin.login("admin@example.com", "admin123")
	w, env := admin.do(http.MethodGet, "/api/v1/admin/dashboard", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(string(env.Data), `"total_products":5`)

	w, _ = admin.do(http.MethodGet, "/api/v1/admin/reports/revenue", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *ServerSuite) TestAdminStockAndStatus() {
	customer := s.newClient()
	customer.login("jane@example.com", "customer123")
	admin := s.newClient()
	admin.login("admin@example.com", "admin123")

	slip := s.variantBySKU("SLIP-BLA-S")

	w, env := admin.do(http.MethodPost, "/api/v1/admin/variants/"+itoa(slip.ID)+"/stock", map[string]interface{}{"delta": -10})
	s.Equal(http.StatusConflict, w.Code, env.Error)

	w, _ = admin.do(http.MethodPost, "/api/v1/admin/variants/"+itoa(slip.ID)+"/stock", map[string]interface{}{"delta": 6, "notes": "restock"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(10, s.variantBySKU("SLIP-BLA-S").StockQuantity)

	w, _ = customer.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{"variant_id": slip.ID, "quantity": 1})
	s.Require().Equal(http.StatusOK, w.Code)
	w, env = customer.do(http.MethodPost, "/api/v1/checkout", map[string]string{})
	s.Require().Equal(http.StatusCreated, w.Code)

	var placed struct {
		ID uint `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &placed))
	path := "/api/v1/admin/orders/" + itoa(placed.ID) + "/status"

	w, env = admin.do(http.MethodPut, path, map[string]string{"status": "shipped"})
	s.Equal(http.StatusConflict, w.Code, env.Error)

	w, env = admin.do(http.MethodPut, path, map[string]string{"status": "teleported"})
	s.Equal(http.StatusBadRequest, w.Code, env.Error)

	w, _ = admin.do(http.MethodPut, path, map[string]string{"status": "processing"})
	s.Equal(http.StatusOK, w.Code)
	w, env = admin.do(http.MethodPut, path, map[string]string{"status": "shipped", "comment": "DHL"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"status":"shipped"`)

	// Another customer's order is invisible
	other := s.newClient()
	other.login("admin@example.com", "admin123")
	w, _ = other.do(http.MethodGet, "/api/v1/orders/"+itoa(placed.ID), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ServerSuite) TestReviewsCommentsAndWishlist() {
	c := s.newClient()
	c.login("jane@example.com", "customer123")

	var p product.Product
	s.Require().NoError(s.db.Where("name = ?", "Linen Shirt").First(&p).Error)
	base := "/api/v1/products/" + itoa(p.ID)

	w, _ := c.do(http.MethodPost, base+"/reviews", map[string]interface{}{"rating": 6})
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = c.do(http.MethodPost, base+"/reviews", map[string]interface{}{"rating": 2, "comment": "meh"})
	s.Require().Equal(http.StatusOK, w.Code)
	w, env := c.do(http.MethodPost, base+"/reviews", map[string]interface{}{"rating": 5, "comment": "great after all"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"total_reviews":1`)
	s.Contains(string(env.Data), `"average_rating":5`)

	w, _ = c.do(http.MethodPost, base+"/comments", map[string]string{"content": "Runs small?"})
	s.Require().Equal(http.StatusCreated, w.Code)
	w, env = c.do(http.MethodGet, base+"/comments", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), "Runs small?")

	w, env = c.do(http.MethodPost, "/api/v1/wishlist/"+itoa(p.ID)+"/toggle", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"in_wishlist":true`)

	w, env = c.do(http.MethodGet, base, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"in_wishlist":true`)

	linen := s.variantBySKU("LINEN-NAV-L")
	w, _ = c.do(http.MethodPost, "/api/v1/wishlist/"+itoa(p.ID)+"/move-to-cart", map[string]interface{}{"variant_id": linen.ID, "quantity": 1})
	s.Require().Equal(http.StatusOK, w.Code)

	w, env = c.do(http.MethodGet, "/api/v1/wishlist/"+itoa(p.ID), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"in_wishlist":false`)
}

func (s *ServerSuite) TestNewsletterAndContact() {
	c := s.newClient()

	w, _ := c.do(http.MethodPost, "/api/v1/newsletter/subscribe", map[string]string{"email": "fan@example.com"})
	s.Equal(http.StatusCreated, w.Code)
	w, _ = c.do(http.MethodPost, "/api/v1/newsletter/subscribe", map[string]string{"email": "fan@example.com"})
	s.Equal(http.StatusConflict, w.Code)

	w, _ = c.do(http.MethodPost, "/api/v1/contact", map[string]string{"name": "Sam", "email": "not-an-email", "message": "hi"})
	s.Equal(http.StatusBadRequest, w.Code)
	w, _ = c.do(http.MethodPost, "/api/v1/contact", map[string]string{"name": "Sam", "email": "sam@example.com", "message": "Where is my parcel?"})
	s.Equal(http.StatusCreated, w.Code)
}

func (s *ServerSuite) TestDarkModeMirrorsIntoSession() {
	c := s.newClient()
	c.login("jane@example.com", "customer123")

	w, env := c.do(http.MethodPut, "/api/v1/users/me/dark-mode", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"dark_mode":true}`, string(env.Data))

	w, env = c.do(http.MethodGet, "/api/v1/users/me", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"dark_mode":true`)

	w, env = c.do(http.MethodPut, "/api/v1/users/me/dark-mode", map[string]bool{"enabled": true})
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"dark_mode":true}`, string(env.Data))
}

func TestLoginIsRateLimited(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testutil.Config()
	cfg.Security.RateLimitPerMinute = 2
	log := logger.Discard()

	db := testutil.NewDB(t, postgres.Models()...)
	mr := miniredis.RunT(t)
	cache := redisdb.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	mailer, err := email.NewEmailService(cfg, log)
	require.NoError(t, err)
	t.Cleanup(mailer.Close)

	c := &client{t: t, handler: NewServer(cfg, log, postgres.NewFromGorm(db), cache, mailer).Handler()}

	body := map[string]string{"login": "nobody@example.com", "password": "wrong"}
	for i := 0; i < 2; i++ {
		w, _ := c.do(http.MethodPost, "/api/v1/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w, _ := c.do(http.MethodPost, "/api/v1/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
