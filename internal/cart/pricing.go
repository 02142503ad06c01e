package cart

import (
	"errors"

	"github.com/shopspring/decimal"

	"shopease_back_end/internal/models"
)

const (
	MethodStandard  = "standard"
	MethodExpress   = "express"
	MethodOvernight = "overnight"
)

// ErrUnknownShippingMethod : mode de livraison inconnu
var ErrUnknownShippingMethod = errors.New("mode de livraison inconnu")

var (
	// FreeShippingThreshold : au-delà (strictement), la livraison standard est offerte
	FreeShippingThreshold = decimal.NewFromInt(50)
	// TaxRate : 7% du sous-total
	TaxRate = decimal.RequireFromString("0.07")
)

var shippingMethods = []models.ShippingMethod{
	{
		ID:            MethodStandard,
		Name:          "Standard Shipping",
		Description:   "Delivered within business days",
		Price:         5.99,
		EstimatedDays: "5-7 business days",
	},
	{
		ID:            MethodExpress,
		Name:          "Express Shipping",
		Description:   "Faster delivery for urgent orders",
		Price:         12.99,
		EstimatedDays: "2-3 business days",
	},
	{
		ID:            MethodOvernight,
		Name:          "Overnight Shipping",
		Description:   "Next business day delivery",
		Price:         24.99,
		EstimatedDays: "1 business day",
	},
}

// ShippingMethods retourne les modes de livraison disponibles
func ShippingMethods() []models.ShippingMethod {
	out := make([]models.ShippingMethod, len(shippingMethods))
	copy(out, shippingMethods)
	return out
}

// ShippingMethodByID retourne le mode demandé ; un id vide vaut "standard"
func ShippingMethodByID(id string) (models.ShippingMethod, bool) {
	if id == "" {
		id = MethodStandard
	}
	for _, m := range shippingMethods {
		if m.ID == id {
			return m, true
		}
	}
	return models.ShippingMethod{}, false
}

// DefaultShippingMethod retourne la livraison standard
func DefaultShippingMethod() models.ShippingMethod {
	m, _ := ShippingMethodByID(MethodStandard)
	return m
}

// Subtotal = somme(prix unitaire × quantité), en décimal
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		price := decimal.NewFromFloat(item.Product.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Totals calcule sous-total, livraison, taxe et total pour le mode choisi.
// Le seuil de gratuité ne s'applique qu'à la livraison standard : un mode
// express ou overnight choisi explicitement est toujours facturé.
func (c *Cart) Totals(method models.ShippingMethod) models.Totals {
	if method.ID == "" {
		method = DefaultShippingMethod()
	}

	subtotal := c.Subtotal()
	shipping := decimal.NewFromFloat(method.Price)
	free := method.ID == MethodStandard && subtotal.GreaterThan(FreeShippingThreshold)
	if free {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	total := subtotal.Add(shipping).Add(tax).Round(2)

	return models.Totals{
		Subtotal:       subtotal.Round(2).InexactFloat64(),
		Shipping:       shipping.InexactFloat64(),
		Tax:            tax.InexactFloat64(),
		Total:          total.InexactFloat64(),
		ShippingMethod: method.ID,
		FreeShipping:   free,
	}
}

// ShippingOptions retourne les modes avec le prix effectif pour un sous-total donné
func ShippingOptions(subtotal float64) models.ShippingCalculation {
	options := ShippingMethods()
	isFree := decimal.NewFromFloat(subtotal).GreaterThan(FreeShippingThreshold)
	if isFree {
		options[0].Price = 0
		options[0].Name = "Free Standard Shipping"
	}
	return models.ShippingCalculation{
		Options:       options,
		FreeThreshold: FreeShippingThreshold.InexactFloat64(),
		CartTotal:     subtotal,
		IsFree:        isFree,
	}
}
