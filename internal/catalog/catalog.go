package catalog

import (
	"strings"

	"shopease_back_end/internal/models"
)

// Catalog répond aux requêtes en lecture seule sur la liste statique de produits.
// Toutes les méthodes respectent l'ordre de la liste source.
type Catalog struct {
	products []models.Product
}

// New copie la liste reçue : le catalogue ne partage pas son slice avec l'appelant
func New(products []models.Product) *Catalog {
	list := make([]models.Product, len(products))
	copy(list, products)
	return &Catalog{products: list}
}

// All retourne tous les produits
func (c *Catalog) All() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int { return len(c.products) }

// ByID cherche un produit par identifiant (parcours linéaire)
func (c *Catalog) ByID(id string) (models.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Related retourne jusqu'à limit autres produits de la même catégorie
func (c *Catalog) Related(id string, limit int) []models.Product {
	out := []models.Product{}
	product, ok := c.ByID(id)
	if !ok || limit <= 0 {
		return out
	}
	for _, p := range c.products {
		if len(out) >= limit {
			break
		}
		if p.ID != id && p.Category == product.Category {
			out = append(out, p)
		}
	}
	return out
}

// Featured retourne jusqu'à limit produits en stock et remisés
func (c *Catalog) Featured(limit int) []models.Product {
	out := []models.Product{}
	for _, p := range c.products {
		if len(out) >= limit {
			break
		}
		if p.InStock && p.IsDiscounted() {
			out = append(out, p)
		}
	}
	return out
}

// Search fait une recherche par sous-chaîne, insensible à la casse,
// sur le nom, la description et la catégorie.
func (c *Catalog) Search(query string) []models.Product {
	q := strings.ToLower(query)
	return c.filter(func(p models.Product) bool {
		return matches(p, q)
	})
}

// Suggest alimente la barre de recherche : 6 résultats maximum
func (c *Catalog) Suggest(query string) []models.Product {
	if strings.TrimSpace(query) == "" {
		return []models.Product{}
	}
	results := c.Search(query)
	if len(results) > SuggestLimit {
		results = results[:SuggestLimit]
	}
	return results
}

func (c *Catalog) ByCategory(category string) []models.Product {
	return c.filter(func(p models.Product) bool {
		return p.Category == category
	})
}

// ByPriceRange filtre sur [min, max], bornes incluses
func (c *Catalog) ByPriceRange(min, max float64) []models.Product {
	return c.filter(func(p models.Product) bool {
		return p.Price >= min && p.Price <= max
	})
}

// Categories retourne les catégories distinctes dans l'ordre d'apparition
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range c.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// Brands retourne les marques renseignées, dans l'ordre d'apparition
func (c *Catalog) Brands() []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, p := range c.products {
		if p.Brand != "" && !seen[p.Brand] {
			seen[p.Brand] = true
			out = append(out, p.Brand)
		}
	}
	return out
}

// PriceBounds retourne le prix min et max du catalogue (0, 0 si vide)
func (c *Catalog) PriceBounds() (min, max float64) {
	for i, p := range c.products {
		if i == 0 || p.Price < min {
			min = p.Price
		}
		if i == 0 || p.Price > max {
			max = p.Price
		}
	}
	return min, max
}

func (c *Catalog) filter(keep func(models.Product) bool) []models.Product {
	out := []models.Product{}
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// matches attend une requête déjà en minuscules
func matches(p models.Product, q string) bool {
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}
