package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fashion-store/internal/domain/cart"
	redisdb "github.com/your-org/fashion-store/internal/infrastructure/database/redis"
	"github.com/your-org/fashion-store/internal/pkg/auth"
	"github.com/your-org/fashion-store/internal/pkg/logger"
	"github.com/your-org/fashion-store/internal/pkg/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRedis(t *testing.T) (*redisdb.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisdb.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()})), mr
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testutil.Config()
	jwt := auth.NewJWTManager(cfg)

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwt), func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID})
	})

	t.Run("missing header", func(t *testing.T) {
		w := perform(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		pair, err := jwt.GenerateTokenPair(&auth.Principal{UserID: 7, Role: auth.RoleCustomer})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		pair, err := jwt.GenerateTokenPair(&auth.Principal{UserID: 7, Role: auth.RoleCustomer})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		w := perform(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":7}`, w.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	cfg := testutil.Config()
	jwt := auth.NewJWTManager(cfg)

	r := gin.New()
	r.GET("/admin", AuthMiddleware(jwt), RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	call := func(role auth.Role) int {
		pair, err := jwt.GenerateTokenPair(&auth.Principal{UserID: 1, Role: role})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		return perform(r, req).Code
	}

	assert.Equal(t, http.StatusForbidden, call(auth.RoleCustomer))
	assert.Equal(t, http.StatusNoContent, call(auth.RoleAdmin))

	// Without AuthMiddleware in front there is no principal at all
	bare := gin.New()
	bare.GET("/admin", RequireRole(auth.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusUnauthorized, perform(bare, httptest.NewRequest(http.MethodGet, "/admin", nil)).Code)
}

func TestOptionalAuthIgnoresBadTokens(t *testing.T) {
	jwt := auth.NewJWTManager(testutil.Config())

	r := gin.New()
	r.GET("/products", OptionalAuthMiddleware(jwt), func(c *gin.Context) {
		_, ok := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"signed_in": ok})
	})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w := perform(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"signed_in":false}`, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	client, mr := newRedis(t)

	r := gin.New()
	r.POST("/login", RateLimit(client, "auth", 2, time.Minute, logger.Discard()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := perform(r, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := perform(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// A new window admits requests again
	mr.FastForward(time.Minute)
	w = perform(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type failingCounter struct{}

func (failingCounter) IncrWindow(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(failingCounter{}, "auth", 1, time.Minute, logger.Discard()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, perform(r, httptest.NewRequest(http.MethodPost, "/login", nil)).Code)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	client, _ := newRedis(t)
	cfg := testutil.Config()
	store := cart.NewRedisSessionStore(client, cfg.Session.TTL)

	r := gin.New()
	r.Use(Session(store, cfg.Session, logger.Discard()))
	r.POST("/dark", func(c *gin.Context) {
		sess, ok := GetSession(c)
		require.True(t, ok)
		sess.DarkMode = true
		c.Status(http.StatusNoContent)
	})
	r.GET("/dark", func(c *gin.Context) {
		sess, _ := GetSession(c)
		c.JSON(http.StatusOK, gin.H{"id": sess.ID, "dark_mode": sess.DarkMode})
	})

	w := perform(r, httptest.NewRequest(http.MethodPost, "/dark", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	id := w.Header().Get(cfg.Session.HeaderName)
	require.NotEmpty(t, id)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cfg.Session.CookieName, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// The cookie brings the same session back
	req := httptest.NewRequest(http.MethodGet, "/dark", nil)
	req.AddCookie(cookies[0])
	w = perform(r, req)

	var body struct {
		ID       string `json:"id"`
		DarkMode bool   `json:"dark_mode"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id, body.ID)
	assert.True(t, body.DarkMode)

	// So does the header
	req = httptest.NewRequest(http.MethodGet, "/dark", nil)
	req.Header.Set(cfg.Session.HeaderName, id)
	w = perform(r, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.DarkMode)
}

func TestSessionReplacesMalformedID(t *testing.T) {
	client, _ := newRedis(t)
	cfg := testutil.Config()

	r := gin.New()
	r.Use(Session(cart.NewRedisSessionStore(client, cfg.Session.TTL), cfg.Session, logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(cfg.Session.HeaderName, "../../etc")
	w := perform(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "../../etc", w.Header().Get(cfg.Session.HeaderName))
}

func TestSessionStoreUnavailable(t *testing.T) {
	client := redisdb.NewFromClient(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))
	cfg := testutil.Config()

	r := gin.New()
	r.Use(Session(cart.NewRedisSessionStore(client, cfg.Session.TTL), cfg.Session, logger.Discard()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusServiceUnavailable, perform(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRequestIDReusesCallerHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := perform(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = perform(r, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusGatewayTimeout, perform(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)
	assert.Equal(t, http.StatusOK, perform(r, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
}

func TestCORS(t *testing.T) {
	cfg := testutil.Config()
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := perform(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.test")
	assert.Equal(t, http.StatusForbidden, perform(r, req).Code)
}

func TestIsOriginAllowed(t *testing.T) {
	allowed := []string{"https://shop.example.com", "*.cdn.example.com"}

	assert.True(t, isOriginAllowed("https://shop.example.com", allowed))
	assert.True(t, isOriginAllowed("https://img.cdn.example.com", allowed))
	assert.False(t, isOriginAllowed("https://example.org", allowed))
}
