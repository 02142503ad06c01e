package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/auth"
	"shopease_back_end/internal/catalog"
	"shopease_back_end/internal/checkout"
	"shopease_back_end/internal/config"
	"shopease_back_end/internal/database"
	"shopease_back_end/internal/routes"
	"shopease_back_end/internal/shop"
	"shopease_back_end/internal/utils"
)

func main() {
	cfg := config.Load()

	store, err := database.OpenStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("❌ Stockage indisponible: %v", err)
	}
	defer store.Close()

	cat, err := catalog.Default()
	if err != nil {
		log.Fatalf("❌ Catalogue invalide: %v", err)
	}
	log.Printf("✅ Catalogue chargé (%d produits)", cat.Len())

	authSvc := auth.NewService(store, auth.Options{
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.TokenTTL,
		Latency:  cfg.AuthLatency,
	})
	checkoutSvc := checkout.NewService(store, newMailer(cfg), checkout.Options{
		Latency: cfg.CheckoutLatency,
	})
	s := shop.New(store, cat, authSvc, checkoutSvc, shop.Options{CartTTL: cfg.CartTTL})
	defer s.Hub.Close()

	r := gin.Default()
	routes.RegisterRoutes(r, s, store, cfg.CORSOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("🚀 Serveur ShopEase lancé sur le port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Serveur: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Arrêt du serveur...")

	// ferme les websockets avant d'attendre les requêtes en cours
	s.Hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Arrêt forcé: %v", err)
	}
	log.Println("✅ Serveur arrêté")
}

// newMailer envoie par SMTP si configuré, sinon se contente de journaliser
func newMailer(cfg config.Config) checkout.Mailer {
	if !cfg.MailEnabled() {
		log.Println("⚠️ SMTP non configuré, les confirmations seront seulement journalisées")
		return utils.LogMailer{}
	}
	return utils.NewSMTPMailer(utils.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}
