package user

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"shopease_back_end/internal/middleware"
	"shopease_back_end/internal/shop"
)

const (
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// les origines sont déjà filtrées par le middleware CORS
		return true
	},
}

// CartWebSocket pousse l'état du panier à chaque modification
func (h *Handler) CartWebSocket(c *gin.Context) {
	owner := middleware.Owner(c)
	ctx := c.Request.Context()

	// abonnement puis snapshot avant l'upgrade : pas de modification perdue entre les deux,
	// et une erreur peut encore être renvoyée en JSON
	events, unsubscribe, err := h.shop.Hub.Subscribe(ctx, owner)
	if err != nil {
		log.Printf("❌ Erreur abonnement panier: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur abonnement panier"})
		return
	}
	defer unsubscribe()

	snapshot, err := h.shop.Cart(ctx, owner, "")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	// lecture en tâche de fond : détecte la fermeture côté client
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v interface{}) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	if err := write(shop.CartEvent{Type: shop.EventCartUpdated, CartSnapshot: snapshot}); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := write(ev); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			// Ping pour garder la connexion active
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
