package user

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/auth"
	"shopease_back_end/internal/handlers"
	"shopease_back_end/internal/middleware"
	"shopease_back_end/internal/models"
	"shopease_back_end/internal/shop"
)

type Handler struct {
	shop *shop.Shop
}

func New(s *shop.Shop) *Handler {
	return &Handler{shop: s}
}

// adoptSessionCart rattache le panier anonyme au compte qui vient de se connecter
func (h *Handler) adoptSessionCart(c *gin.Context, user models.User) {
	sessionOwner, ok := middleware.SessionOwner(c.GetHeader(middleware.SessionHeader))
	if !ok {
		return
	}
	if _, err := h.shop.MergeCart(c.Request.Context(), sessionOwner, user.ID); err != nil {
		log.Printf("⚠️ Fusion panier %s → %s: %v", sessionOwner, user.ID, err)
	}
}

// Register crée le compte et connecte directement l'utilisateur
func (h *Handler) Register(c *gin.Context) {
	var input auth.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, "Données invalides")
		return
	}

	user, err := h.shop.Auth.Register(c.Request.Context(), input)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	token, err := h.shop.Auth.IssueToken(user)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	h.adoptSessionCart(c, user)

	log.Printf("✅ Compte créé: %s", user.Email)
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.BadRequest(c, "Données invalides")
		return
	}

	user, token, err := h.shop.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	h.adoptSessionCart(c, user)

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Logout révoque le token courant
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}
	if err := h.shop.Auth.Logout(c.Request.Context(), claims); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Déconnecté"})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.shop.Auth.Get(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe applique un patch partiel du profil
func (h *Handler) UpdateMe(c *gin.Context) {
	var patch auth.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		handlers.BadRequest(c, "Données invalides")
		return
	}

	user, err := h.shop.Auth.UpdateProfile(c.Request.Context(), c.GetString(middleware.ContextUserID), patch)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
