package product

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shopease_back_end/internal/catalog"
	"shopease_back_end/internal/handlers"
	"shopease_back_end/internal/middleware"
	"shopease_back_end/internal/shop"
)

const defaultWidgetLimit = 4

type Handler struct {
	shop *shop.Shop
}

func New(s *shop.Shop) *Handler {
	return &Handler{shop: s}
}

// GetProduct retourne un produit et l'ajoute aux produits consultés
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.shop.ViewProduct(c.Request.Context(), middleware.Owner(c), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetRelated retourne les produits de la même catégorie
func (h *Handler) GetRelated(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.shop.Catalog.ByID(id); !ok {
		handlers.RespondError(c, shop.ErrProductNotFound)
		return
	}
	limit := handlers.IntQuery(c, "limit", defaultWidgetLimit)
	c.JSON(http.StatusOK, gin.H{"products": h.shop.Catalog.Related(id, limit)})
}

func (h *Handler) GetFeatured(c *gin.Context) {
	limit := handlers.IntQuery(c, "limit", defaultWidgetLimit)
	c.JSON(http.StatusOK, gin.H{"products": h.shop.Catalog.Featured(limit)})
}

func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	products := h.shop.Catalog.Search(q)
	c.JSON(http.StatusOK, gin.H{"query": q, "products": products, "count": len(products)})
}

// Suggest alimente la barre de recherche (6 résultats max)
func (h *Handler) Suggest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.shop.Catalog.Suggest(c.Query("q"))})
}

func (h *Handler) GetByCategory(c *gin.Context) {
	category := c.Param("category")
	products := h.shop.Catalog.ByCategory(category)
	c.JSON(http.StatusOK, gin.H{"category": category, "products": products, "count": len(products)})
}

// GetFilters retourne les valeurs disponibles pour les filtres
func (h *Handler) GetFilters(c *gin.Context) {
	min, max := h.shop.Catalog.PriceBounds()
	c.JSON(http.StatusOK, gin.H{
		"categories": h.shop.Catalog.Categories(),
		"brands":     h.shop.Catalog.Brands(),
		"price_range": gin.H{
			"min": min,
			"max": max,
		},
	})
}

// ListProducts recherche avancée avec filtres, tri et pagination
func (h *Handler) ListProducts(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		handlers.BadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, h.shop.Catalog.Query(filter))
}

type filterError string

func (e filterError) Error() string { return string(e) }

func parseFilter(c *gin.Context) (catalog.Filter, error) {
	sortOrder, ok := catalog.ParseSortOrder(c.Query("sort"))
	if !ok {
		return catalog.Filter{}, filterError("Tri invalide")
	}

	f := catalog.Filter{
		Query:       strings.TrimSpace(c.Query("q")),
		Categories:  listQuery(c, "category"),
		Brands:      listQuery(c, "brand"),
		InStockOnly: boolQuery(c, "in_stock"),
		OnSaleOnly:  boolQuery(c, "on_sale"),
		Sort:        sortOrder,
		Page:        handlers.IntQuery(c, "page", 1),
		Limit:       handlers.IntQuery(c, "limit", catalog.DefaultPageLimit),
	}

	var err error
	if f.MinPrice, err = floatQuery(c, "min_price"); err != nil {
		return catalog.Filter{}, err
	}
	if f.MaxPrice, err = floatQuery(c, "max_price"); err != nil {
		return catalog.Filter{}, err
	}
	if f.MinRating, err = floatQuery(c, "min_rating"); err != nil {
		return catalog.Filter{}, err
	}
	return f, nil
}

// listQuery accepte ?category=a&category=b ainsi que ?category=a,b
func listQuery(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func boolQuery(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

func floatQuery(c *gin.Context, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, filterError("Paramètre " + name + " invalide")
	}
	return &v, nil
}
