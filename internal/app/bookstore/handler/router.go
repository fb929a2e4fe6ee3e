package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"knjizara/pkg/logger"
	"knjizara/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
// Публичный каталог не требует аутентификации, операции продавца
// и покупателя защищены JWT, управление категориями доступно admin
func SetupRoutes(
	catalogHandler *CatalogHandler,
	listingHandler *ListingHandler,
	orderHandler *OrderHandler,
	addressHandler *AddressHandler,
	wishlistHandler *WishlistHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("knjizara"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "knjizara",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичный каталог
	books := router.Group("/books")
	{
		books.GET("", catalogHandler.ListBooks)
		books.GET("/:id", catalogHandler.GetBook)

		// Кураторские флаги витрины меняет только admin
		adminBooks := books.Group("")
		adminBooks.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(roleAdmin))
		{
			adminBooks.PATCH("/:id/flags", catalogHandler.UpdateBookFlags)
		}
	}

	// Категории: чтение публичное, изменение только admin
	categories := router.Group("/categories")
	{
		categories.GET("", catalogHandler.GetAllCategories)

		adminOnly := categories.Group("")
		adminOnly.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(roleAdmin))
		{
			adminOnly.POST("", catalogHandler.CreateCategory)
			adminOnly.PUT("/:id", catalogHandler.UpdateCategory)
			adminOnly.DELETE("/:id", catalogHandler.DeleteCategory)
		}
	}

	// Публичные профили и витрины продавцов
	sellers := router.Group("/sellers")
	{
		sellers.GET("/:id", listingHandler.GetSeller)
		sellers.GET("/:id/books", listingHandler.GetSellerListings)

		protected := sellers.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", listingHandler.RegisterSeller)
		}
	}

	// Объявления текущего продавца
	listings := router.Group("/listings")
	listings.Use(authMiddleware.Authenticate())
	{
		listings.POST("", listingHandler.CreateListing)
		listings.GET("/my", listingHandler.GetMyListings)
		listings.PUT("/:id", listingHandler.UpdateListing)
		listings.DELETE("/:id", listingHandler.DeleteListing)
		listings.PATCH("/:id/status", listingHandler.ToggleStatus)
		listings.POST("/:id/sold", listingHandler.MarkAsSold)
	}

	// Заказы: расчет корзины публичный, остальное защищено
	orders := router.Group("/orders")
	{
		orders.POST("/quote", orderHandler.QuoteOrder)

		protected := orders.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", orderHandler.CreateOrder)
			protected.GET("", orderHandler.GetUserOrders)
			protected.GET("/seller", orderHandler.GetSellerOrders)
			protected.GET("/:id", orderHandler.GetOrder)
			protected.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
		}
	}

	// Адреса доставки
	addresses := router.Group("/addresses")
	addresses.Use(authMiddleware.Authenticate())
	{
		addresses.POST("", addressHandler.CreateAddress)
		addresses.GET("", addressHandler.GetUserAddresses)
		addresses.PUT("/:id", addressHandler.UpdateAddress)
		addresses.POST("/:id/default", addressHandler.SetDefaultAddress)
		addresses.DELETE("/:id", addressHandler.DeleteAddress)
	}

	// Список желаний
	wishlist := router.Group("/wishlist")
	wishlist.Use(authMiddleware.Authenticate())
	{
		wishlist.GET("", wishlistHandler.GetWishlist)
		wishlist.GET("/:bookId", wishlistHandler.IsInWishlist)
		wishlist.POST("/:bookId", wishlistHandler.AddToWishlist)
		wishlist.DELETE("/:bookId", wishlistHandler.RemoveFromWishlist)
	}

	return router
}
