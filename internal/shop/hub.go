package shop

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"shopease_back_end/internal/cache"
	"shopease_back_end/internal/models"
)

const (
	EventCartUpdated = "cart_updated"

	subscriberBuffer = 8
)

var ErrHubClosed = errors.New("diffusion des paniers arrêtée")

// CartEvent est le message poussé aux abonnés d'un panier
type CartEvent struct {
	Type string `json:"type"`
	models.CartSnapshot
}

func cartChannel(owner string) string { return "cart:" + owner }

// Hub diffuse les instantanés de panier via le Pub/Sub du stockage :
// toutes les instances branchées sur le même Redis voient les mêmes événements.
// Un abonné trop lent perd des événements, il ne bloque jamais l'écrivain.
type Hub struct {
	store cache.Store

	mu     sync.Mutex
	active map[string]map[cache.Subscription]struct{}
	closed bool
}

func NewHub(store cache.Store) *Hub {
	return &Hub{store: store, active: make(map[string]map[cache.Subscription]struct{})}
}

// Publish sérialise l'événement et le publie sur le canal du propriétaire
func (h *Hub) Publish(ctx context.Context, owner string, event CartEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.store.Publish(ctx, cartChannel(owner), data)
}

// Subscribe retourne le canal des événements et la fonction de désabonnement.
// Le canal est fermé au désabonnement ou à l'arrêt du hub.
func (h *Hub) Subscribe(ctx context.Context, owner string) (<-chan CartEvent, func(), error) {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		return nil, nil, ErrHubClosed
	}

	sub, err := h.store.Subscribe(ctx, cartChannel(owner))
	if err != nil {
		return nil, nil, err
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.Close()
		return nil, nil, ErrHubClosed
	}
	if h.active[owner] == nil {
		h.active[owner] = make(map[cache.Subscription]struct{})
	}
	h.active[owner][sub] = struct{}{}
	h.mu.Unlock()

	out := make(chan CartEvent, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range sub.Messages() {
			var event CartEvent
			if err := json.Unmarshal(msg, &event); err != nil {
				log.Printf("⚠️ Événement panier illisible (%s): %v", owner, err)
				continue
			}
			select {
			case out <- event:
			default:
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() { h.release(owner, sub) })
	}, nil
}

func (h *Hub) release(owner string, sub cache.Subscription) {
	h.mu.Lock()
	if set, ok := h.active[owner]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.active, owner)
		}
	}
	h.mu.Unlock()
	sub.Close()
}

// Subscribers retourne le nombre d'abonnés locaux d'un propriétaire
func (h *Hub) Subscribers(owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.active[owner])
}

// Close ferme tous les abonnements locaux (arrêt du serveur)
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	var subs []cache.Subscription
	for owner, set := range h.active {
		for sub := range set {
			subs = append(subs, sub)
		}
		delete(h.active, owner)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
