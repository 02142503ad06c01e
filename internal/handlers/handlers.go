package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/auth"
	"shopease_back_end/internal/cart"
	"shopease_back_end/internal/checkout"
	"shopease_back_end/internal/lists"
	"shopease_back_end/internal/shop"
)

// statusOf associe une erreur métier à un code HTTP
func statusOf(err error) int {
	switch {
	case errors.Is(err, shop.ErrProductNotFound),
		errors.Is(err, shop.ErrNotInCart),
		errors.Is(err, checkout.ErrOrderNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, shop.ErrInvalidQuantity),
		errors.Is(err, cart.ErrUnknownShippingMethod),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidEmail),
		errors.Is(err, auth.ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, lists.ErrCompareFull):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// RespondError écrit {"error": ...} avec le code correspondant.
// Les erreurs internes ne sont pas exposées.
func RespondError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "Erreur serveur"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// BadRequest répond 400 avec le message donné
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// IntQuery lit un entier positif, def si absent ou invalide
func IntQuery(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Health répond 200 si le stockage est joignable
func Health(s *shop.Shop) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Ping(c.Request.Context()); err != nil {
			log.Printf("❌ Health check: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "products": s.Catalog.Len()})
	}
}
