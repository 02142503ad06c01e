package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/handlers"
	"shopease_back_end/internal/middleware"
	"shopease_back_end/internal/utils"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.shop.Order(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrderQRCode retourne le QR code PNG de la commande (?size=)
func (h *Handler) GetOrderQRCode(c *gin.Context) {
	order, err := h.shop.Order(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	size := handlers.IntQuery(c, "size", defaultQRSize)
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := utils.OrderQRCode(order, size)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Header("Content-Length", strconv.Itoa(len(png)))
	c.Data(http.StatusOK, "image/png", png)
}
