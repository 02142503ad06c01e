package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/handlers"
	"shopease_back_end/internal/middleware"
	"shopease_back_end/internal/models"
)

func respondCart(c *gin.Context, snapshot models.CartSnapshot, err error) {
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetCart retourne le panier ; ?shipping= choisit le mode pour les totaux
func (h *Handler) GetCart(c *gin.Context) {
	snapshot, err := h.shop.Cart(c.Request.Context(), middleware.Owner(c), c.Query("shipping"))
	respondCart(c, snapshot, err)
}

//
// 🟢 POST /api/cart/add
//
func (h *Handler) AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ProductID == "" {
		handlers.BadRequest(c, "Données invalides")
		return
	}

	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	snapshot, err := h.shop.AddToCart(c.Request.Context(), middleware.Owner(c), input.ProductID, quantity)
	respondCart(c, snapshot, err)
}

//
// 🟡 PUT /api/cart/:productId
//
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, "Données invalides")
		return
	}

	snapshot, err := h.shop.UpdateCartItem(c.Request.Context(), middleware.Owner(c), c.Param("productId"), input.Quantity)
	respondCart(c, snapshot, err)
}

//
// 🔴 DELETE /api/cart/:productId
//
func (h *Handler) RemoveFromCart(c *gin.Context) {
	snapshot, err := h.shop.RemoveFromCart(c.Request.Context(), middleware.Owner(c), c.Param("productId"))
	respondCart(c, snapshot, err)
}

func (h *Handler) ClearCart(c *gin.Context) {
	snapshot, err := h.shop.ClearCart(c.Request.Context(), middleware.Owner(c))
	respondCart(c, snapshot, err)
}
