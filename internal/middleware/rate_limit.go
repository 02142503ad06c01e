package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/cache"
)

const (
	// Limites par endpoint
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	APIMaxRequests      = 100 // Par minute pour les endpoints généraux
	CartMaxRequests     = 20

	// Durées de cooldown
	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
	APICooldown      = 1 * time.Minute
)

// counter lit un compteur, 0 s'il n'existe pas
func counter(ctx context.Context, store cache.Store, key string) int {
	data, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			log.Printf("⚠️ Lecture compteur %s: %v", key, err)
		}
		return 0
	}
	n, _ := strconv.Atoi(string(data))
	return n
}

// inCooldown répond 429 si la clé de cooldown existe
func inCooldown(c *gin.Context, store cache.Store, key, message string) bool {
	ctx := c.Request.Context()
	exists, err := store.Exists(ctx, key)
	if err != nil || !exists {
		return false
	}
	ttl, _ := store.TTL(ctx, key)
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       fmt.Sprintf("%s. Réessayez dans %d minutes", message, int(ttl.Minutes())),
		"retry_after": int(ttl.Seconds()),
	})
	c.Abort()
	return true
}

// LoginRateLimit limite les tentatives de connexion échouées par email
func LoginRateLimit(store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(input.Email))
		key := "login_attempts:" + email
		cooldownKey := "login_cooldown:" + email

		if inCooldown(c, store, cooldownKey, "Trop de tentatives échouées") {
			return
		}

		attempts := counter(ctx, store, key)
		if attempts >= LoginMaxAttempts {
			// Activer le cooldown
			store.Set(ctx, cooldownKey, []byte("1"), LoginCooldown)
			store.Del(ctx, key)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			store.Incr(ctx, key, LoginCooldown)
		case http.StatusOK:
			// Login réussi, réinitialiser les tentatives
			store.Del(ctx, key, cooldownKey)
		}
	}
}

// RegisterRateLimit limite les inscriptions par IP
func RegisterRateLimit(store cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()
		key := "register_attempts:" + ip
		cooldownKey := "register_cooldown:" + ip

		if inCooldown(c, store, cooldownKey, "Trop d'inscriptions") {
			return
		}

		if counter(ctx, store, key) >= RegisterMaxAttempts {
			store.Set(ctx, cooldownKey, []byte("1"), RegisterCooldown)
			store.Del(ctx, key)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Trop d'inscriptions. Réessayez dans %d minutes", int(RegisterCooldown.Minutes())),
				"retry_after": int(RegisterCooldown.Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			store.Incr(ctx, key, RegisterCooldown)
		}
	}
}

func tooMany(c *gin.Context, store cache.Store, key, message string) {
	retry := APICooldown
	if ttl, err := store.TTL(c.Request.Context(), key); err == nil && ttl > 0 {
		retry = ttl
	}
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       message,
		"retry_after": int(retry.Seconds()),
	})
	c.Abort()
}

// windowLimit limite le nombre de requêtes par clé sur une fenêtre d'une minute
func windowLimit(store cache.Store, max int, message string, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		// requête refusée : pas d'incrément, la fenêtre en cours n'est pas prolongée
		if counter(ctx, store, key) >= max {
			tooMany(c, store, key, message)
			return
		}

		n, err := store.Incr(ctx, key, APICooldown)
		if err != nil {
			// stockage indisponible : on laisse passer
			log.Printf("⚠️ Rate limit %s: %v", key, err)
			c.Next()
			return
		}
		if int(n) > max {
			// course entre deux requêtes concurrentes
			tooMany(c, store, key, message)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max-int(n)))
		c.Next()
	}
}

// APIRateLimit limite le nombre de requêtes par IP (général)
func APIRateLimit(store cache.Store) gin.HandlerFunc {
	return windowLimit(store, APIMaxRequests, "Trop de requêtes. Réessayez dans 1 minute", func(c *gin.Context) string {
		return "api_requests:" + c.ClientIP()
	})
}

// CartRateLimit limite les écritures panier par propriétaire (anti-spam)
func CartRateLimit(store cache.Store) gin.HandlerFunc {
	return windowLimit(store, CartMaxRequests, "Trop d'ajouts au panier. Ralentissez un peu", func(c *gin.Context) string {
		owner := Owner(c)
		if owner == "" {
			return ""
		}
		return "cart_add:" + owner
	})
}
