package shop

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"shopease_back_end/internal/auth"
	"shopease_back_end/internal/cache"
	"shopease_back_end/internal/cart"
	"shopease_back_end/internal/catalog"
	"shopease_back_end/internal/checkout"
	"shopease_back_end/internal/lists"
	"shopease_back_end/internal/models"
)

var (
	ErrProductNotFound = errors.New("produit introuvable")
	ErrInvalidQuantity = errors.New("quantité invalide")
	ErrNotInCart       = errors.New("produit absent du panier")
)

const (
	defaultCartTTL = 24 * time.Hour
	lockStripes    = 64
)

type Options struct {
	CartTTL time.Duration
}

// Shop est l'état applicatif : catalogue, paniers, listes, comptes et commandes.
// Les écritures d'un même propriétaire sont sérialisées.
type Shop struct {
	Catalog  *catalog.Catalog
	Auth     *auth.Service
	Lists    *lists.Lists
	Checkout *checkout.Service
	Hub      *Hub

	store   cache.Store
	cartTTL time.Duration
	locks   [lockStripes]sync.Mutex
}

func New(store cache.Store, cat *catalog.Catalog, authSvc *auth.Service, checkoutSvc *checkout.Service, opts Options) *Shop {
	ttl := opts.CartTTL
	if ttl <= 0 {
		ttl = defaultCartTTL
	}
	return &Shop{
		Catalog:  cat,
		Auth:     authSvc,
		Lists:    lists.New(store),
		Checkout: checkoutSvc,
		Hub:      NewHub(store),
		store:    store,
		cartTTL:  ttl,
	}
}

// lock verrouille le propriétaire et retourne la fonction de déverrouillage
func (s *Shop) lock(owner string) func() {
	m := &s.locks[s.stripe(owner)]
	m.Lock()
	return m.Unlock
}

func (s *Shop) stripe(owner string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(owner))
	return h.Sum32() % lockStripes
}

func (s *Shop) product(id string) (models.Product, error) {
	p, ok := s.Catalog.ByID(id)
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Ping vérifie le stockage
func (s *Shop) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// ---------- Produits ----------

// ViewProduct retourne le produit et l'ajoute aux produits consultés
func (s *Shop) ViewProduct(ctx context.Context, owner, id string) (models.Product, error) {
	p, err := s.product(id)
	if err != nil {
		return models.Product{}, err
	}
	if owner == "" {
		return p, nil
	}

	unlock := s.lock(owner)
	defer unlock()
	if err := s.Lists.RecordView(ctx, owner, p); err != nil {
		// l'historique est accessoire
		log.Printf("⚠️ Historique non enregistré pour %s: %v", owner, err)
	}
	return p, nil
}

func (s *Shop) RecentlyViewed(ctx context.Context, owner string, limit int) ([]models.Product, error) {
	return s.Lists.RecentlyViewed(ctx, owner, limit)
}

// ---------- Panier ----------

func cartKey(owner string) string {
	return "cart:" + owner
}

func (s *Shop) loadCart(ctx context.Context, owner string) (*cart.Cart, error) {
	var items []models.CartItem
	err := cache.GetJSON(ctx, s.store, cartKey(owner), &items)
	if errors.Is(err, cache.ErrNotFound) {
		return &cart.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}
	return cart.FromItems(items), nil
}

func (s *Shop) saveCart(ctx context.Context, owner string, c *cart.Cart) error {
	if c.IsEmpty() {
		return s.store.Del(ctx, cartKey(owner))
	}
	if err := cache.SetJSON(ctx, s.store, cartKey(owner), c.Items(), s.cartTTL); err != nil {
		return fmt.Errorf("écriture panier: %w", err)
	}
	return nil
}

// commit enregistre le panier puis publie le nouvel état
func (s *Shop) commit(ctx context.Context, owner string, c *cart.Cart) (models.CartSnapshot, error) {
	if err := s.saveCart(ctx, owner, c); err != nil {
		return models.CartSnapshot{}, err
	}
	snapshot := c.Snapshot(cart.DefaultShippingMethod())
	// le panier est déjà enregistré : un échec de diffusion ne fait pas échouer l'écriture
	if err := s.Hub.Publish(ctx, owner, CartEvent{Type: EventCartUpdated, CartSnapshot: snapshot}); err != nil {
		log.Printf("⚠️ Diffusion panier %s: %v", owner, err)
	}
	return snapshot, nil
}

// Cart retourne le panier avec les totaux du mode de livraison demandé
func (s *Shop) Cart(ctx context.Context, owner, shippingMethod string) (models.CartSnapshot, error) {
	method, ok := cart.ShippingMethodByID(shippingMethod)
	if !ok {
		return models.CartSnapshot{}, cart.ErrUnknownShippingMethod
	}
	c, err := s.loadCart(ctx, owner)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	return c.Snapshot(method), nil
}

// AddToCart ajoute quantity exemplaires du produit (fusion si déjà présent)
func (s *Shop) AddToCart(ctx context.Context, owner, productID string, quantity int) (models.CartSnapshot, error) {
	if quantity < 1 {
		return models.CartSnapshot{}, ErrInvalidQuantity
	}
	p, err := s.product(productID)
	if err != nil {
		return models.CartSnapshot{}, err
	}

	unlock := s.lock(owner)
	defer unlock()

	c, err := s.loadCart(ctx, owner)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	c.Add(p, quantity)
	return s.commit(ctx, owner, c)
}

// UpdateCartItem fixe la quantité d'une ligne existante (minimum 1)
func (s *Shop) UpdateCartItem(ctx context.Context, owner, productID string, quantity int) (models.CartSnapshot, error) {
	if quantity < 1 {
		return models.CartSnapshot{}, ErrInvalidQuantity
	}

	unlock := s.lock(owner)
	defer unlock()

	c, err := s.loadCart(ctx, owner)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	if !c.UpdateQuantity(productID, quantity) {
		return models.CartSnapshot{}, ErrNotInCart
	}
	return s.commit(ctx, owner, c)
}

// RemoveFromCart est sans effet si le produit n'est pas dans le panier
func (s *Shop) RemoveFromCart(ctx context.Context, owner, productID string) (models.CartSnapshot, error) {
	unlock := s.lock(owner)
	defer unlock()

	c, err := s.loadCart(ctx, owner)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	c.Remove(productID)
	return s.commit(ctx, owner, c)
}

func (s *Shop) ClearCart(ctx context.Context, owner string) (models.CartSnapshot, error) {
	unlock := s.lock(owner)
	defer unlock()
	return s.commit(ctx, owner, &cart.Cart{})
}

// MergeCart verse le panier de la session anonyme dans celui de l'utilisateur
// (connexion). Le panier de session est supprimé.
func (s *Shop) MergeCart(ctx context.Context, from, to string) (models.CartSnapshot, error) {
	if from == "" || from == to {
		return s.Cart(ctx, to, "")
	}

	// verrous pris par ordre croissant de bande pour éviter l'interblocage
	a, b := s.stripe(from), s.stripe(to)
	if a > b {
		a, b = b, a
	}
	s.locks[a].Lock()
	defer s.locks[a].Unlock()
	if a != b {
		s.locks[b].Lock()
		defer s.locks[b].Unlock()
	}

	guest, err := s.loadCart(ctx, from)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	target, err := s.loadCart(ctx, to)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	if guest.IsEmpty() {
		return target.Snapshot(cart.DefaultShippingMethod()), nil
	}
	for _, item := range guest.Items() {
		target.Add(item.Product, item.Quantity)
	}

	snapshot, err := s.commit(ctx, to, target)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	if _, err := s.commit(ctx, from, &cart.Cart{}); err != nil {
		log.Printf("⚠️ Panier de session %s non vidé: %v", from, err)
	}
	return snapshot, nil
}

// ---------- Commandes ----------

// PlaceOrder passe la commande du panier courant puis vide le panier
func (s *Shop) PlaceOrder(ctx context.Context, owner string, req checkout.Request) (models.Order, error) {
	unlock := s.lock(owner)
	defer unlock()

	c, err := s.loadCart(ctx, owner)
	if err != nil {
		return models.Order{}, err
	}
	order, err := s.Checkout.Place(ctx, owner, c, req)
	if err != nil {
		return models.Order{}, err
	}

	if _, err := s.commit(ctx, owner, &cart.Cart{}); err != nil {
		// la commande est enregistrée, on ne la perd pas pour un panier non vidé
		log.Printf("⚠️ Panier %s non vidé après la commande %s: %v", owner, order.ID, err)
	}
	return order, nil
}

func (s *Shop) Order(ctx context.Context, owner, id string) (models.Order, error) {
	return s.Checkout.Order(ctx, owner, id)
}

// ---------- Wishlist ----------

func (s *Shop) Wishlist(ctx context.Context, owner string) ([]models.Product, error) {
	return s.Lists.Wishlist(ctx, owner)
}

func (s *Shop) AddToWishlist(ctx context.Context, owner, productID string) ([]models.Product, error) {
	p, err := s.product(productID)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(owner)
	defer unlock()
	return s.Lists.AddToWishlist(ctx, owner, p)
}

func (s *Shop) RemoveFromWishlist(ctx context.Context, owner, productID string) ([]models.Product, error) {
	unlock := s.lock(owner)
	defer unlock()
	return s.Lists.RemoveFromWishlist(ctx, owner, productID)
}

// ToggleWishlist retourne true si le produit est maintenant dans la wishlist
func (s *Shop) ToggleWishlist(ctx context.Context, owner, productID string) (bool, error) {
	p, err := s.product(productID)
	if err != nil {
		return false, err
	}
	unlock := s.lock(owner)
	defer unlock()
	return s.Lists.ToggleWishlist(ctx, owner, p)
}

func (s *Shop) ClearWishlist(ctx context.Context, owner string) error {
	unlock := s.lock(owner)
	defer unlock()
	return s.Lists.ClearWishlist(ctx, owner)
}

// ---------- Comparaison ----------

func (s *Shop) CompareList(ctx context.Context, owner string) ([]models.Product, error) {
	return s.Lists.CompareList(ctx, owner)
}

func (s *Shop) AddToCompare(ctx context.Context, owner, productID string) ([]models.Product, error) {
	p, err := s.product(productID)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(owner)
	defer unlock()
	return s.Lists.AddToCompare(ctx, owner, p)
}

func (s *Shop) RemoveFromCompare(ctx context.Context, owner, productID string) ([]models.Product, error) {
	unlock := s.lock(owner)
	defer unlock()
	return s.Lists.RemoveFromCompare(ctx, owner, productID)
}

func (s *Shop) ClearCompare(ctx context.Context, owner string) error {
	unlock := s.lock(owner)
	defer unlock()
	return s.Lists.ClearCompare(ctx, owner)
}
