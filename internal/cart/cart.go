package cart

import "shopease_back_end/internal/models"

// Cart agrège les lignes (produit, quantité). Au plus une ligne par produit.
// La valeur zéro est un panier vide prêt à l'emploi.
type Cart struct {
	items []models.CartItem
}

// FromItems reconstruit un panier (ex: depuis le stockage) en fusionnant les doublons
func FromItems(items []models.CartItem) *Cart {
	c := &Cart{}
	for _, item := range items {
		c.Add(item.Product, item.Quantity)
	}
	return c
}

// Add fusionne avec la ligne existante (somme des quantités) ou ajoute une ligne
func (c *Cart) Add(product models.Product, quantity int) {
	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			c.items[i].Quantity += quantity
			return
		}
	}
	c.items = append(c.items, models.CartItem{Product: product, Quantity: quantity})
}

// UpdateQuantity fixe la quantité d'une ligne. Aucun minimum n'est imposé ici,
// c'est à l'appelant de borner la valeur.
func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Remove supprime la ligne du produit, sans effet si elle n'existe pas
func (c *Cart) Remove(productID string) {
	kept := c.items[:0]
	for _, item := range c.items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	c.items = kept
}

func (c *Cart) Clear() {
	c.items = nil
}

// Items retourne une copie des lignes
func (c *Cart) Items() []models.CartItem {
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Count retourne le nombre total d'articles (somme des quantités)
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Snapshot retourne la vue complète du panier avec les totaux
func (c *Cart) Snapshot(method models.ShippingMethod) models.CartSnapshot {
	return models.CartSnapshot{
		Items:  c.Items(),
		Count:  c.Count(),
		Totals: c.Totals(method),
	}
}
