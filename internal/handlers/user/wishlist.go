package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/handlers"
	"shopease_back_end/internal/middleware"
	"shopease_back_end/internal/models"
)

func respondList(c *gin.Context, products []models.Product, err error) {
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// ---------- Wishlist ----------

func (h *Handler) GetWishlist(c *gin.Context) {
	products, err := h.shop.Wishlist(c.Request.Context(), middleware.Owner(c))
	respondList(c, products, err)
}

func (h *Handler) AddToWishlist(c *gin.Context) {
	products, err := h.shop.AddToWishlist(c.Request.Context(), middleware.Owner(c), c.Param("productId"))
	respondList(c, products, err)
}

func (h *Handler) RemoveFromWishlist(c *gin.Context) {
	products, err := h.shop.RemoveFromWishlist(c.Request.Context(), middleware.Owner(c), c.Param("productId"))
	respondList(c, products, err)
}

// ToggleWishlist ajoute ou retire le produit (bouton cœur)
func (h *Handler) ToggleWishlist(c *gin.Context) {
	ctx := c.Request.Context()
	owner := middleware.Owner(c)

	inWishlist, err := h.shop.ToggleWishlist(ctx, owner, c.Param("productId"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	products, err := h.shop.Wishlist(ctx, owner)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inWishlist": inWishlist, "products": products, "count": len(products)})
}

func (h *Handler) ClearWishlist(c *gin.Context) {
	if err := h.shop.ClearWishlist(c.Request.Context(), middleware.Owner(c)); err != nil {
		handlers.RespondError(c, err)
		return
	}
	respondList(c, []models.Product{}, nil)
}

// ---------- Comparaison ----------

func (h *Handler) GetCompare(c *gin.Context) {
	products, err := h.shop.CompareList(c.Request.Context(), middleware.Owner(c))
	respondList(c, products, err)
}

func (h *Handler) AddToCompare(c *gin.Context) {
	products, err := h.shop.AddToCompare(c.Request.Context(), middleware.Owner(c), c.Param("productId"))
	respondList(c, products, err)
}

func (h *Handler) RemoveFromCompare(c *gin.Context) {
	products, err := h.shop.RemoveFromCompare(c.Request.Context(), middleware.Owner(c), c.Param("productId"))
	respondList(c, products, err)
}

func (h *Handler) ClearCompare(c *gin.Context) {
	if err := h.shop.ClearCompare(c.Request.Context(), middleware.Owner(c)); err != nil {
		handlers.RespondError(c, err)
		return
	}
	respondList(c, []models.Product{}, nil)
}

// ---------- Produits consultés ----------

func (h *Handler) GetRecentlyViewed(c *gin.Context) {
	limit := handlers.IntQuery(c, "limit", 0)
	products, err := h.shop.RecentlyViewed(c.Request.Context(), middleware.Owner(c), limit)
	respondList(c, products, err)
}
