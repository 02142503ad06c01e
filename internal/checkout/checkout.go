package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopease_back_end/internal/cache"
	"shopease_back_end/internal/cart"
	"shopease_back_end/internal/models"
	"shopease_back_end/internal/utils"
)

var (
	ErrEmptyCart     = errors.New("le panier est vide")
	ErrInvalidEmail  = errors.New("email invalide")
	ErrOrderNotFound = errors.New("commande introuvable")
)

const defaultOrderTTL = 90 * 24 * time.Hour

// Mailer envoie la confirmation d'une commande
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order models.Order) error
}

type Request struct {
	Email           string         `json:"email"`
	ShippingMethod  string         `json:"shippingMethod"`
	ShippingAddress models.Address `json:"shippingAddress"`
}

type Options struct {
	Latency  time.Duration
	OrderTTL time.Duration
}

// Service passe les commandes : totaux, enregistrement et confirmation.
// Il ne vide pas le panier, c'est le rôle de l'appelant une fois la commande acceptée.
type Service struct {
	store    cache.Store
	mailer   Mailer
	latency  time.Duration
	orderTTL time.Duration
	now      func() time.Time
}

func NewService(store cache.Store, mailer Mailer, opts Options) *Service {
	if mailer == nil {
		mailer = utils.LogMailer{}
	}
	ttl := opts.OrderTTL
	if ttl <= 0 {
		ttl = defaultOrderTTL
	}
	return &Service{
		store:    store,
		mailer:   mailer,
		latency:  opts.Latency,
		orderTTL: ttl,
		now:      time.Now,
	}
}

// storedOrder garde le propriétaire à côté de la commande
type storedOrder struct {
	models.Order
	Owner string `json:"owner"`
}

func orderKey(id string) string {
	return "order:" + id
}

// Place valide la demande, calcule les totaux et enregistre la commande
func (s *Service) Place(ctx context.Context, owner string, c *cart.Cart, req Request) (models.Order, error) {
	if c == nil || c.IsEmpty() {
		return models.Order{}, ErrEmptyCart
	}

	method, ok := cart.ShippingMethodByID(req.ShippingMethod)
	if !ok {
		return models.Order{}, cart.ErrUnknownShippingMethod
	}

	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return models.Order{}, ErrInvalidEmail
	}

	// Traitement simulé de la commande
	if err := utils.SimulateLatency(ctx, s.latency); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		ID:              uuid.NewString(),
		Email:           email,
		Items:           c.Items(),
		Totals:          c.Totals(method),
		ShippingMethod:  method.ID,
		ShippingAddress: req.ShippingAddress,
		Status:          models.OrderStatusConfirmed,
		CreatedAt:       s.now().UTC(),
	}

	if err := cache.SetJSON(ctx, s.store, orderKey(order.ID), storedOrder{Order: order, Owner: owner}, s.orderTTL); err != nil {
		return models.Order{}, fmt.Errorf("enregistrement commande: %w", err)
	}

	// l'e-mail est un bonus : un échec n'annule pas la commande
	if err := s.mailer.SendOrderConfirmation(ctx, order); err != nil {
		log.Printf("⚠️ Confirmation non envoyée pour %s: %v", order.ID, err)
	}

	log.Printf("✅ Commande %s confirmée (%.2f)", order.ID, order.Totals.Total)
	return order, nil
}

// Order retourne une commande si elle appartient au propriétaire
func (s *Service) Order(ctx context.Context, owner, id string) (models.Order, error) {
	var stored storedOrder
	err := cache.GetJSON(ctx, s.store, orderKey(id), &stored)
	if errors.Is(err, cache.ErrNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	if stored.Owner != owner {
		return models.Order{}, ErrOrderNotFound
	}
	return stored.Order, nil
}
