package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/cache"
	"shopease_back_end/internal/handlers"
	pa "shopease_back_end/internal/handlers/payement"
	"shopease_back_end/internal/handlers/product"
	"shopease_back_end/internal/handlers/user"
	"shopease_back_end/internal/middleware"
	"shopease_back_end/internal/shop"
)

// CORS autorise le front (origines de CORS_ORIGINS, "*" pour toutes)
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.SessionHeader},
		ExposeHeaders:    []string{middleware.SessionHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}

func RegisterRoutes(r *gin.Engine, s *shop.Shop, store cache.Store, corsOrigins []string) {
	r.Use(CORS(corsOrigins))

	r.GET("/health", handlers.Health(s))

	productH := product.New(s)
	userH := user.New(s)
	payH := pa.New(s)

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit(store))

	// Authentification
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", middleware.RegisterRateLimit(store), userH.Register)
		authGroup.POST("/login", middleware.LoginRateLimit(store), userH.Login)

		private := authGroup.Group("", middleware.AuthRequired(s.Auth))
		private.POST("/logout", userH.Logout)
		private.GET("/me", userH.Me)
		private.PATCH("/me", userH.UpdateMe)
	}

	// Le reste fonctionne en anonyme (X-Session-ID) ou connecté
	shopGroup := api.Group("", middleware.OptionalAuth(s.Auth), middleware.Session())

	// Produits
	products := shopGroup.Group("/products")
	{
		products.GET("", productH.ListProducts)
		products.GET("/featured", productH.GetFeatured)
		products.GET("/search", productH.Search)
		products.GET("/suggest", productH.Suggest)
		products.GET("/filters", productH.GetFilters)
		products.GET("/:id", productH.GetProduct)
		products.GET("/:id/related", productH.GetRelated)
	}
	shopGroup.GET("/categories/:category/products", productH.GetByCategory)

	// Panier
	cartGroup := shopGroup.Group("/cart")
	{
		cartGroup.GET("", userH.GetCart)
		cartGroup.GET("/ws", userH.CartWebSocket)
		cartGroup.POST("/add", middleware.CartRateLimit(store), userH.AddToCart)
		cartGroup.PUT("/:productId", userH.UpdateCartItem)
		cartGroup.DELETE("/:productId", userH.RemoveFromCart)
		cartGroup.DELETE("", userH.ClearCart)
	}

	// Livraison et commande
	shopGroup.GET("/shipping/options", payH.GetShippingOptions)
	shopGroup.POST("/checkout", payH.Checkout)
	shopGroup.GET("/orders/:id", userH.GetOrder)
	shopGroup.GET("/orders/:id/qrcode", userH.GetOrderQRCode)

	// Wishlist
	wishlist := shopGroup.Group("/wishlist")
	{
		wishlist.GET("", userH.GetWishlist)
		wishlist.DELETE("", userH.ClearWishlist)
		wishlist.POST("/:productId", userH.AddToWishlist)
		wishlist.DELETE("/:productId", userH.RemoveFromWishlist)
		wishlist.POST("/:productId/toggle", userH.ToggleWishlist)
	}

	// Comparaison
	compare := shopGroup.Group("/compare")
	{
		compare.GET("", userH.GetCompare)
		compare.DELETE("", userH.ClearCompare)
		compare.POST("/:productId", userH.AddToCompare)
		compare.DELETE("/:productId", userH.RemoveFromCompare)
	}

	shopGroup.GET("/recently-viewed", userH.GetRecentlyViewed)
}
