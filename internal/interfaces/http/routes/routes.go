// internal/interfaces/http/routes/routes.go
package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/interfaces/http/handlers"
	"github.com/your-org/fashion-store/internal/interfaces/http/middleware"
	"github.com/your-org/fashion-store/internal/pkg/auth"
)

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	Auth       *handlers.AuthHandler
	Profile    *handlers.UserProfileHandler
	Product    *handlers.ProductHandler
	Review     *handlers.ReviewHandler
	Cart       *handlers.CartHandler
	Checkout   *handlers.CheckoutHandler
	Order      *handlers.OrderHandler
	Invoice    *handlers.InvoiceHandler
	Wishlist   *handlers.WishlistHandler
	Engagement *handlers.EngagementHandler
	Analytics  *handlers.AnalyticsHandler
	Inventory  *handlers.InventoryHandler
	UserAdmin  *handlers.UserAdminHandler
}

// Dependencies are the collaborators the route middleware needs
type Dependencies struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Tokens   middleware.TokenValidator
	Limiter  middleware.WindowCounter
	Handlers *Handlers
}

// SetupRoutes registers every API route on rg
func SetupRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	SetupAuthRoutes(rg, deps)
	SetupUserRoutes(rg, deps)
	SetupProductRoutes(rg, deps)
	SetupCartRoutes(rg, deps)
	SetupOrderRoutes(rg, deps)
	SetupWishlistRoutes(rg, deps)
	SetupEngagementRoutes(rg, deps)
	SetupAdminRoutes(rg, deps)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	h := deps.Handlers.Auth
	limit := middleware.RateLimit(deps.Limiter, "auth", deps.Config.Security.RateLimitPerMinute, time.Minute, deps.Logger)

	authGroup := rg.Group("/auth")
	authGroup.Use(limit)
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.RefreshToken)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
		authGroup.POST("/logout", h.Logout)
	}
}

// SetupUserRoutes sets up the signed-in customer's account routes
func SetupUserRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	h := deps.Handlers.Profile

	me := rg.Group("/users/me")
	me.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		me.GET("", h.GetProfile)
		me.PUT("", h.UpdateProfile)
		me.PUT("/password", h.ChangePassword)
		me.PUT("/dark-mode", h.SetDarkMode)
	}
}

// SetupProductRoutes sets up catalog, review and comment routes
func SetupProductRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	ph := deps.Handlers.Product
	rh := deps.Handlers.Review

	rg.GET("/categories", ph.GetCategories)

	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(deps.Tokens)) // Optional auth for personalization
	{
		products.GET("", ph.GetProducts)
		products.GET("/filters", ph.GetFilters)
		products.GET("/:id", ph.GetProduct)
		products.GET("/:id/reviews", rh.GetProductReviews)
		products.GET("/:id/reviews/summary", rh.GetProductReviewSummary)
		products.GET("/:id/comments", rh.GetProductComments)
	}

	protected := rg.Group("/products")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		protected.POST("/:id/reviews", rh.UpsertReview)
		protected.POST("/:id/comments", rh.AddComment)
	}
}

// SetupCartRoutes sets up cart and checkout routes. The cart itself is open to
// anonymous visitors; checkout is not.
func SetupCartRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	h := deps.Handlers.Cart

	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", h.GetCart)
		cartGroup.DELETE("", h.ClearCart)
		cartGroup.POST("/items", h.AddToCart)
		cartGroup.PUT("/items/:variant_id", h.UpdateCartItem)
		cartGroup.DELETE("/items/:variant_id", h.RemoveFromCart)
		cartGroup.POST("/buy-now", h.BuyNow)
	}

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		checkout.GET("", deps.Handlers.Checkout.GetCheckout)
		checkout.POST("", deps.Handlers.Checkout.PlaceOrder)
	}
}

// SetupOrderRoutes sets up the customer's order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	h := deps.Handlers.Order
	inv := deps.Handlers.Invoice

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		orders.GET("", h.GetOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.GET("/:id/invoice", inv.GenerateInvoice)
		orders.GET("/:id/invoice/preview", inv.PreviewInvoice)
	}
}

// SetupWishlistRoutes sets up wishlist routes
func SetupWishlistRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	h := deps.Handlers.Wishlist

	wishlist := rg.Group("/wishlist")
	wishlist.Use(middleware.AuthMiddleware(deps.Tokens))
	{
		wishlist.GET("", h.GetWishlist)
		wishlist.GET("/:product_id", h.CheckItemInWishlist)
		wishlist.DELETE("/:product_id", h.RemoveFromWishlist)
		wishlist.POST("/:product_id/toggle", h.ToggleWishlist)
		wishlist.POST("/:product_id/move-to-cart", h.MoveToCart)
	}
}

// SetupEngagementRoutes sets up the newsletter and contact form routes
func SetupEngagementRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	h := deps.Handlers.Engagement
	limit := middleware.RateLimit(deps.Limiter, "forms", deps.Config.Security.RateLimitPerMinute, time.Minute, deps.Logger)

	newsletter := rg.Group("/newsletter")
	newsletter.Use(limit)
	{
		newsletter.POST("/subscribe", h.Subscribe)
		newsletter.POST("/unsubscribe", h.Unsubscribe)
	}

	rg.POST("/contact", limit, h.SubmitContact)
}

// SetupAdminRoutes sets up the back-office routes. Every route requires the
// admin role.
func SetupAdminRoutes(rg *gin.RouterGroup, deps *Dependencies) {
	hs := deps.Handlers

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(deps.Tokens))
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/dashboard", hs.Analytics.GetDashboard)
		admin.GET("/reports/revenue", hs.Analytics.GetRevenue)

		// Catalog
		admin.GET("/products", hs.Product.AdminGetProducts)
		admin.POST("/products", hs.Product.AdminCreateProduct)
		admin.GET("/products/:id", hs.Product.AdminGetProduct)
		admin.PUT("/products/:id", hs.Product.AdminUpdateProduct)
		admin.POST("/products/:id/variants", hs.Product.AdminCreateVariant)
		admin.POST("/categories", hs.Product.AdminCreateCategory)
		admin.POST("/colors", hs.Product.AdminCreateColor)
		admin.POST("/sizes", hs.Product.AdminCreateSize)

		// Stock
		admin.POST("/variants/:id/stock", hs.Inventory.AdjustStock)
		admin.GET("/variants/:id/movements", hs.Inventory.GetMovements)
		admin.GET("/inventory/low-stock", hs.Inventory.GetLowStock)

		// Orders
		admin.GET("/orders", hs.Order.AdminGetOrders)
		admin.GET("/orders/:id", hs.Order.AdminGetOrder)
		admin.PUT("/orders/:id/status", hs.Order.AdminUpdateOrderStatus)
		admin.GET("/orders/:id/invoice", hs.Invoice.AdminGenerateInvoice)

		// Moderation
		admin.GET("/comments", hs.Review.AdminGetComments)
		admin.POST("/comments/:id/reply", hs.Review.AdminReplyComment)
		admin.PATCH("/comments/:id/visibility", hs.Review.AdminToggleComment)

		// Engagement
		admin.GET("/newsletter", hs.Engagement.AdminGetSubscriptions)
		admin.GET("/contact-messages", hs.Engagement.AdminGetMessages)
		admin.PATCH("/contact-messages/:id", hs.Engagement.AdminMarkMessage)

		// Customers
		admin.GET("/users", hs.UserAdmin.GetUsers)
		admin.GET("/users/:id", hs.UserAdmin.GetUser)
		admin.PUT("/users/:id/status", hs.UserAdmin.UpdateUserStatus)
		admin.PUT("/users/:id/role", hs.UserAdmin.UpdateUserRole)
	}
}
