package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopease_back_end/internal/auth"
)

const (
	// SessionHeader identifie le panier et les listes d'un visiteur anonyme
	SessionHeader = "X-Session-ID"

	ContextUserID    = "user_id"
	ContextEmail     = "email"
	ContextClaims    = "claims"
	ContextOwner     = "owner"
	ContextSessionID = "session_id"

	sessionOwnerPrefix = "session:"
)

// bearerToken extrait le token du header Authorization ("Bearer <token>")
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextClaims, claims)
}

// AuthRequired refuse la requête sans token valide et non révoqué
func AuthRequired(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
			c.Abort()
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			log.Println("❌ Format Authorization invalide")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide"})
			c.Abort()
			return
		}

		claims, err := svc.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			log.Printf("❌ Token refusé: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth renseigne l'utilisateur quand un token valide est présent.
// Un token invalide est ignoré : la requête continue en anonyme.
func OptionalAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			claims, err := svc.Authenticate(c.Request.Context(), tokenString)
			if err == nil {
				setClaims(c, claims)
			} else {
				log.Printf("⚠️ Token ignoré: %v", err)
			}
		}
		c.Next()
	}
}

// SessionOwner retourne le propriétaire associé à un identifiant de session.
// Les sessions anonymes ont leur propre espace ("session:<uuid>") pour ne jamais
// recouvrir un identifiant de compte. ok est false si l'identifiant n'est pas un uuid.
func SessionOwner(sessionID string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(sessionID))
	if err != nil {
		return "", false
	}
	return sessionOwnerPrefix + id.String(), true
}

// Session fixe le propriétaire du panier et des listes : l'utilisateur
// connecté, sinon la session anonyme (X-Session-ID ou ?session_id=, générée si absente).
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
		if sessionID == "" {
			// les websockets du navigateur ne peuvent pas fixer de header
			sessionID = strings.TrimSpace(c.Query("session_id"))
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		sessionOwner, ok := SessionOwner(sessionID)
		if !ok {
			log.Printf("❌ Session invalide: %q", sessionID)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session invalide"})
			c.Abort()
			return
		}
		sessionID = strings.TrimPrefix(sessionOwner, sessionOwnerPrefix)
		c.Header(SessionHeader, sessionID)
		c.Set(ContextSessionID, sessionID)

		owner := c.GetString(ContextUserID)
		if owner == "" {
			owner = sessionOwner
		}
		c.Set(ContextOwner, owner)
		c.Next()
	}
}

// Owner retourne le propriétaire fixé par Session
func Owner(c *gin.Context) string {
	return c.GetString(ContextOwner)
}

// Claims retourne les claims posés par AuthRequired
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
