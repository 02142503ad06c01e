package models

import "time"

// Product est immuable : le catalogue est chargé une fois au démarrage.
type Product struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description" yaml:"description"`
	Price         float64   `json:"price" yaml:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	Category      string    `json:"category" yaml:"category"`
	Rating        float64   `json:"rating" yaml:"rating"` // 0-5
	ReviewCount   int       `json:"reviewCount" yaml:"reviewCount"`
	Image         string    `json:"image,omitempty" yaml:"image,omitempty"`
	InStock       bool      `json:"inStock" yaml:"inStock"`
	Discount      *int      `json:"discount,omitempty" yaml:"discount,omitempty"` // pourcentage
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`

	// Caractéristiques descriptives (optionnelles)
	Brand      string `json:"brand,omitempty" yaml:"brand,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Weight     string `json:"weight,omitempty" yaml:"weight,omitempty"`
	Dimensions string `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Material   string `json:"material,omitempty" yaml:"material,omitempty"`
	Color      string `json:"color,omitempty" yaml:"color,omitempty"`
	Warranty   string `json:"warranty,omitempty" yaml:"warranty,omitempty"`
	MadeIn     string `json:"madeIn,omitempty" yaml:"madeIn,omitempty"`
}

// IsDiscounted indique si le produit a une remise non nulle
func (p Product) IsDiscounted() bool {
	return p.Discount != nil && *p.Discount > 0
}
