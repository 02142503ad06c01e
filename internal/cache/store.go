package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound est retourné quand une clé n'existe pas (ou a expiré)
var ErrNotFound = errors.New("clé introuvable")

// Store est la persistance clé/valeur injectée dans les services.
// Les valeurs sont des blobs opaques (JSON en pratique). Un ttl nul signifie
// pas d'expiration.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Index (hash) : champ → valeur
	HGet(ctx context.Context, key, field string) (string, error)
	// HSetNX n'écrit que si le champ est absent ; retourne true si écrit
	HSetNX(ctx context.Context, key, field, value string) (bool, error)
	HDel(ctx context.Context, key, field string) error

	// Incr incrémente un compteur ; la fenêtre part du premier incrément
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)

	// Pub/Sub : diffusion entre instances partageant le même stockage
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe ne retourne qu'une fois l'abonnement actif
	Subscribe(ctx context.Context, channel string) (Subscription, error)

	Ping(ctx context.Context) error
	Close() error
}

// Subscription reçoit les messages d'un canal. Messages est fermé par Close.
// Un abonné trop lent perd des messages, il ne bloque jamais l'émetteur.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// SubscriptionBuffer : messages en attente par abonné avant perte
const SubscriptionBuffer = 16

// GetJSON décode la valeur de key dans out
func GetJSON(ctx context.Context, s Store, key string, out interface{}) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("décodage %s: %w", key, err)
	}
	return nil
}

// SetJSON encode value et l'écrit sous key
func SetJSON(ctx context.Context, s Store, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encodage %s: %w", key, err)
	}
	return s.Set(ctx, key, data, ttl)
}
