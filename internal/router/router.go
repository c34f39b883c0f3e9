package router

import (
	"time"

	"github.com/dimaspr/belimart-backend/config"
	"github.com/dimaspr/belimart-backend/internal/app/controller"
	"github.com/dimaspr/belimart-backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController        *controller.AuthController
	userController        *controller.UserController
	productController     *controller.ProductController
	cartController        *controller.CartController
	transactionController *controller.TransactionController
	uploadController      *controller.UploadController
	exportController      *controller.ExportController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	transactionController *controller.TransactionController,
	uploadController *controller.UploadController,
	exportController *controller.ExportController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		userController:        userController,
		productController:     productController,
		cartController:        cartController,
		transactionController: transactionController,
		uploadController:      uploadController,
		exportController:      exportController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     r.config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "BELIMART API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authController.Logout)
		}

		users := v1.Group("/users")
		{
			users.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			users.PATCH("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProduct)
		}

		cart := v1.Group("/cart", r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.PUT("/items/:productId", r.cartController.SetItemQuantity)
			cart.DELETE("/items/:productId", r.cartController.RemoveFromCart)
		}

		transactions := v1.Group("/transactions", r.authMiddleware.Authenticate())
		{
			transactions.POST("", r.transactionController.Checkout)
			transactions.GET("", r.transactionController.GetTransactions)
			transactions.GET("/:id", r.transactionController.GetTransaction)
		}

		admin := v1.Group("/admin",
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole("admin"),
		)
		{
			admin.GET("/users", r.userController.ListUsers)

			admin.POST("/products", r.productController.CreateProduct)
			admin.PUT("/products/:id", r.productController.UpdateProduct)
			admin.DELETE("/products/:id", r.productController.DeleteProduct)
			admin.PATCH("/products/:id/restock", r.productController.RestockProduct)

			admin.POST("/uploads/presigned-url", r.uploadController.GeneratePresignedURL)

			admin.GET("/exports/products", r.exportController.ExportProducts)
			admin.GET("/exports/transactions", r.exportController.ExportTransactions)
		}
	}

	return router
}
