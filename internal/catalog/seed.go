package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"shopease_back_end/internal/models"
)

//go:embed products.yaml
var seedYAML []byte

// Load construit un catalogue depuis un document YAML (liste de produits)
func Load(data []byte) (*Catalog, error) {
	var products []models.Product
	if err := yaml.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("catalogue invalide: %w", err)
	}

	seen := make(map[string]bool, len(products))
	for _, p := range products {
		if p.ID == "" {
			return nil, fmt.Errorf("produit sans identifiant: %q", p.Name)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("identifiant produit dupliqué: %s", p.ID)
		}
		seen[p.ID] = true
	}

	return New(products), nil
}

// Default charge le catalogue embarqué dans le binaire
func Default() (*Catalog, error) {
	return Load(seedYAML)
}
