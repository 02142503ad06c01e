package pa

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/cart"
	"shopease_back_end/internal/handlers"
	"shopease_back_end/internal/middleware"
	"shopease_back_end/internal/shop"
)

type Handler struct {
	shop *shop.Shop
}

func New(s *shop.Shop) *Handler {
	return &Handler{shop: s}
}

// GetShippingOptions retourne les modes de livraison disponibles.
// Sans ?subtotal=, le sous-total du panier courant est utilisé.
func (h *Handler) GetShippingOptions(c *gin.Context) {
	var subtotal float64
	if raw := c.Query("subtotal"); raw != "" {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || n < 0 {
			handlers.BadRequest(c, "Sous-total invalide")
			return
		}
		subtotal = n
	} else {
		snapshot, err := h.shop.Cart(c.Request.Context(), middleware.Owner(c), "")
		if err != nil {
			handlers.RespondError(c, err)
			return
		}
		subtotal = snapshot.Totals.Subtotal
	}

	c.JSON(http.StatusOK, cart.ShippingOptions(subtotal))
}
