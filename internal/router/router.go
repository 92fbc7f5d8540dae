package router

import (
	"github.com/gin-gonic/gin"

	"github.com/minhvo/tiemao-backend/config"
	"github.com/minhvo/tiemao-backend/internal/app/controller"
	"github.com/minhvo/tiemao-backend/internal/middleware"
	"github.com/minhvo/tiemao-backend/internal/session"
)

type Router struct {
	shopController    *controller.ShopController
	authController    *controller.AuthController
	accountController *controller.AccountController
	cartController    *controller.CartController
	orderController   *controller.OrderController
	paymentController *controller.PaymentController
	adminController   *controller.AdminController
	authMiddleware    *middleware.AuthMiddleware
	sessionStore      *session.Store
	config            *config.Config
}

func NewRouter(
	shopController *controller.ShopController,
	authController *controller.AuthController,
	accountController *controller.AccountController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	paymentController *controller.PaymentController,
	adminController *controller.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	sessionStore *session.Store,
	cfg *config.Config,
) *Router {
	return &Router{
		shopController:    shopController,
		authController:    authController,
		accountController: accountController,
		cartController:    cartController,
		orderController:   orderController,
		paymentController: paymentController,
		adminController:   adminController,
		authMiddleware:    authMiddleware,
		sessionStore:      sessionStore,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RecoveryMiddleware(r.config.Server.Environment))
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(session.Middleware(r.sessionStore))

	router.GET("/health", r.shopController.Health)

	// Product images and placeholders are served straight from disk.
	router.Static("/images", r.config.Assets.UploadDir)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.OptionalAuthenticate(), r.authController.Logout)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.shopController.ListProducts)
			products.GET("/search", r.shopController.SearchProducts)
			products.GET("/:id", r.shopController.GetProduct)
		}

		cart := v1.Group("/cart")
		cart.Use(r.authMiddleware.OptionalAuthenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("", r.cartController.UpdateCartLine)
			cart.PUT("/bulk", r.cartController.BulkUpdateCart)
			cart.DELETE("/:id", r.cartController.RemoveFromCart)
		}

		orders := v1.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/checkout", r.orderController.CheckoutInfo)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.POST("/checkout", r.orderController.Checkout)
			orders.POST("/buy-now", r.orderController.BuyNow)
			orders.POST("/:id/cancel", r.orderController.CancelOrder)
			orders.PUT("/:id/shipping", r.orderController.UpdateShipping)
		}

		payment := v1.Group("/payment")
		payment.Use(r.authMiddleware.Authenticate())
		{
			payment.POST("/stripe/session", r.paymentController.CreateStripeSession)
			payment.GET("/stripe/success", r.paymentController.StripeSuccess)
		}

		account := v1.Group("/account")
		account.Use(r.authMiddleware.Authenticate())
		{
			account.GET("/profile", r.accountController.GetProfile)
			account.PUT("/profile", r.accountController.UpdateProfile)
			account.POST("/change-password", r.accountController.ChangePassword)
			account.POST("/avatar", r.accountController.UploadAvatar)

			account.GET("/addresses", r.accountController.ListAddresses)
			account.POST("/addresses", r.accountController.CreateAddress)
			account.PUT("/addresses/:id", r.accountController.UpdateAddress)
			account.DELETE("/addresses/:id", r.accountController.DeleteAddress)
			account.POST("/addresses/:id/default", r.accountController.SetDefaultAddress)
		}

		admin := v1.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
		{
			admin.POST("/products", r.adminController.CreateProduct)
			admin.PUT("/products/:id", r.adminController.UpdateProduct)
			admin.DELETE("/products/:id", r.adminController.DeleteProduct)

			admin.GET("/orders", r.adminController.ListOrders)
			admin.GET("/orders/:id", r.adminController.GetOrder)
			admin.PUT("/orders/:id/status", r.adminController.UpdateOrderStatus)
			admin.PUT("/orders/:id/shipping", r.adminController.UpdateOrderShipping)
			admin.DELETE("/orders/:id", r.adminController.DeleteOrder)

			admin.GET("/reports/sales", r.adminController.SalesReport)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
