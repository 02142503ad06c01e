package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config regroupe les réglages lus dans l'environnement
type Config struct {
	Port         string
	StoreBackend string // "redis" ou "memory"

	RedisHost     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	TokenTTL  time.Duration
	CartTTL   time.Duration

	// Latences simulées (0 = désactivées)
	AuthLatency     time.Duration
	CheckoutLatency time.Duration

	CORSOrigins []string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

// Load charge .env (si présent) puis lit la configuration
func Load() Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv lit la configuration sans toucher au fichier .env
func FromEnv() Config {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", "redis")),

		RedisHost:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),
		CartTTL:   getDuration("CART_TTL", 24*time.Hour),

		AuthLatency:     getDuration("AUTH_LATENCY", 0),
		CheckoutLatency: getDuration("CHECKOUT_LATENCY", 0),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "noreply@shopease.local"),
	}

	if cfg.JWTSecret == "" {
		log.Println("⚠️ JWT_SECRET manquant, utilisation d'un secret de développement")
		cfg.JWTSecret = "super_secret"
	}
	return cfg
}

// MailEnabled indique si l'envoi d'e-mails est configuré
func (c Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
