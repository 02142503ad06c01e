package lists

import (
	"context"
	"errors"

	"shopease_back_end/internal/cache"
	"shopease_back_end/internal/models"
)

const (
	RecentlyViewedCap = 10
	CompareCap        = 4
)

// ErrCompareFull est retourné quand la comparaison contient déjà CompareCap produits
var ErrCompareFull = errors.New("liste de comparaison pleine")

// Lists gère wishlist, comparaison et produits consultés, par propriétaire
// (utilisateur connecté ou session anonyme). Chaque liste est un tableau JSON
// de produits stocké sous "<liste>:<propriétaire>".
//
// Les méthodes font un read-modify-write : l'appelant sérialise les écritures
// d'un même propriétaire.
type Lists struct {
	store cache.Store
}

func New(store cache.Store) *Lists {
	return &Lists{store: store}
}

func wishlistKey(owner string) string { return "wishlist:" + owner }
func compareKey(owner string) string  { return "compareList:" + owner }
func recentKey(owner string) string   { return "recentlyViewed:" + owner }

func (l *Lists) load(ctx context.Context, key string) ([]models.Product, error) {
	var products []models.Product
	err := cache.GetJSON(ctx, l.store, key, &products)
	if errors.Is(err, cache.ErrNotFound) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (l *Lists) save(ctx context.Context, key string, products []models.Product) error {
	if len(products) == 0 {
		return l.store.Del(ctx, key)
	}
	return cache.SetJSON(ctx, l.store, key, products, 0)
}

func indexOf(products []models.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func without(products []models.Product, id string) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// --- Wishlist ---

func (l *Lists) Wishlist(ctx context.Context, owner string) ([]models.Product, error) {
	return l.load(ctx, wishlistKey(owner))
}

func (l *Lists) InWishlist(ctx context.Context, owner, productID string) (bool, error) {
	products, err := l.Wishlist(ctx, owner)
	if err != nil {
		return false, err
	}
	return indexOf(products, productID) >= 0, nil
}

// AddToWishlist est idempotent
func (l *Lists) AddToWishlist(ctx context.Context, owner string, product models.Product) ([]models.Product, error) {
	products, err := l.Wishlist(ctx, owner)
	if err != nil {
		return nil, err
	}
	if indexOf(products, product.ID) < 0 {
		products = append(products, product)
		if err := l.save(ctx, wishlistKey(owner), products); err != nil {
			return nil, err
		}
	}
	return products, nil
}

func (l *Lists) RemoveFromWishlist(ctx context.Context, owner, productID string) ([]models.Product, error) {
	products, err := l.Wishlist(ctx, owner)
	if err != nil {
		return nil, err
	}
	products = without(products, productID)
	if err := l.save(ctx, wishlistKey(owner), products); err != nil {
		return nil, err
	}
	return products, nil
}

// ToggleWishlist ajoute le produit s'il est absent, le retire sinon.
// Retourne true si le produit est dans la wishlist après l'opération.
func (l *Lists) ToggleWishlist(ctx context.Context, owner string, product models.Product) (bool, error) {
	products, err := l.Wishlist(ctx, owner)
	if err != nil {
		return false, err
	}
	if indexOf(products, product.ID) >= 0 {
		return false, l.save(ctx, wishlistKey(owner), without(products, product.ID))
	}
	return true, l.save(ctx, wishlistKey(owner), append(products, product))
}

func (l *Lists) ClearWishlist(ctx context.Context, owner string) error {
	return l.store.Del(ctx, wishlistKey(owner))
}

// --- Comparaison ---

func (l *Lists) CompareList(ctx context.Context, owner string) ([]models.Product, error) {
	return l.load(ctx, compareKey(owner))
}

// AddToCompare ignore les doublons et refuse au-delà de CompareCap produits
func (l *Lists) AddToCompare(ctx context.Context, owner string, product models.Product) ([]models.Product, error) {
	products, err := l.CompareList(ctx, owner)
	if err != nil {
		return nil, err
	}
	if indexOf(products, product.ID) >= 0 {
		return products, nil
	}
	if len(products) >= CompareCap {
		return products, ErrCompareFull
	}
	products = append(products, product)
	if err := l.save(ctx, compareKey(owner), products); err != nil {
		return nil, err
	}
	return products, nil
}

func (l *Lists) RemoveFromCompare(ctx context.Context, owner, productID string) ([]models.Product, error) {
	products, err := l.CompareList(ctx, owner)
	if err != nil {
		return nil, err
	}
	products = without(products, productID)
	if err := l.save(ctx, compareKey(owner), products); err != nil {
		return nil, err
	}
	return products, nil
}

func (l *Lists) ClearCompare(ctx context.Context, owner string) error {
	return l.store.Del(ctx, compareKey(owner))
}

// --- Produits consultés ---

// RecordView place le produit en tête, sans doublon, et garde les 10 derniers
func (l *Lists) RecordView(ctx context.Context, owner string, product models.Product) error {
	products, err := l.load(ctx, recentKey(owner))
	if err != nil {
		return err
	}
	products = append([]models.Product{product}, without(products, product.ID)...)
	if len(products) > RecentlyViewedCap {
		products = products[:RecentlyViewedCap]
	}
	return l.save(ctx, recentKey(owner), products)
}

// RecentlyViewed retourne au plus limit produits (tous si limit <= 0)
func (l *Lists) RecentlyViewed(ctx context.Context, owner string, limit int) ([]models.Product, error) {
	products, err := l.load(ctx, recentKey(owner))
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products, nil
}
