package catalog

import (
	"sort"
	"strings"

	"shopease_back_end/internal/models"
)

const (
	SuggestLimit = 6

	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type SortOrder string

const (
	SortFeatured     SortOrder = "featured"
	SortRelevance    SortOrder = "relevance"
	SortPriceLowHigh SortOrder = "price-low-high"
	SortPriceHighLow SortOrder = "price-high-low"
	SortRating       SortOrder = "rating"
	SortNewest       SortOrder = "newest"
)

// ParseSortOrder accepte aussi les alias price_asc / price_desc
func ParseSortOrder(s string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "featured":
		return SortFeatured, true
	case "relevance":
		return SortRelevance, true
	case "price-low-high", "price_asc":
		return SortPriceLowHigh, true
	case "price-high-low", "price_desc":
		return SortPriceHighLow, true
	case "rating":
		return SortRating, true
	case "newest":
		return SortNewest, true
	}
	return "", false
}

// Filter décrit une recherche combinée. Les champs vides ou nil ne filtrent pas.
type Filter struct {
	Query       string
	Categories  []string // au moins une
	Brands      []string // au moins une
	MinPrice    *float64
	MaxPrice    *float64
	MinRating   *float64
	InStockOnly bool
	OnSaleOnly  bool
	Sort        SortOrder
	Page        int
	Limit       int
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type Result struct {
	Products   []models.Product `json:"products"`
	Pagination Pagination       `json:"pagination"`
}

func (f Filter) keep(p models.Product) bool {
	if f.Query != "" && !matches(p, strings.ToLower(f.Query)) {
		return false
	}
	if len(f.Categories) > 0 && !contains(f.Categories, p.Category) {
		return false
	}
	if len(f.Brands) > 0 && !contains(f.Brands, p.Brand) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	if f.InStockOnly && !p.InStock {
		return false
	}
	if f.OnSaleOnly && !p.IsDiscounted() {
		return false
	}
	return true
}

// Query applique filtres, tri stable puis pagination
func (c *Catalog) Query(f Filter) Result {
	products := c.filter(f.keep)

	switch f.Sort {
	case SortPriceLowHigh:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceHighLow:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool { return products[i].CreatedAt.After(products[j].CreatedAt) })
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}

	total := len(products)
	// page au-delà de la fin : on compare avant de multiplier (pas de débordement)
	start, end := total, total
	if page-1 <= total/limit {
		start = (page - 1) * limit
		end = start + limit
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
	}

	return Result{
		Products: products[start:end],
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
