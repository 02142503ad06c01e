package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"shopease_back_end/internal/cache"
	"shopease_back_end/internal/config"
)

// ConnectRedis ouvre le client Redis et vérifie la connexion
func ConnectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis (%s): %w", cfg.RedisHost, err)
	}
	log.Println("✅ Connecté à Redis")
	return client, nil
}

// OpenStore choisit l'implémentation du Store selon STORE_BACKEND
func OpenStore(ctx context.Context, cfg config.Config) (cache.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		log.Println("⚠️ Stockage en mémoire : les données sont perdues au redémarrage")
		return cache.NewMemoryStore(), nil
	case "redis", "":
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		client, err := ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisStore(client), nil
	}
	return nil, fmt.Errorf("STORE_BACKEND inconnu: %q", cfg.StoreBackend)
}
