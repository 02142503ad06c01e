package pa

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/checkout"
	"shopease_back_end/internal/handlers"
	"shopease_back_end/internal/middleware"
)

// Checkout passe la commande du panier courant et vide le panier
func (h *Handler) Checkout(c *gin.Context) {
	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, "Données invalides")
		return
	}

	// l'email du compte sert par défaut
	if req.Email == "" {
		req.Email = c.GetString(middleware.ContextEmail)
	}

	order, err := h.shop.PlaceOrder(c.Request.Context(), middleware.Owner(c), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	log.Printf("🛒 Commande %s passée par %s", order.ID, middleware.Owner(c))
	c.JSON(http.StatusCreated, gin.H{"order": order})
}
