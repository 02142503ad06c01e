package models

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Totals récapitule une commande (montants arrondis au centime)
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	Shipping       float64 `json:"shipping"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
	ShippingMethod string  `json:"shippingMethod"`
	FreeShipping   bool    `json:"freeShipping"`
}

// CartSnapshot est la vue publiée au client (API et websocket)
type CartSnapshot struct {
	Items  []CartItem `json:"items"`
	Count  int        `json:"count"`
	Totals Totals     `json:"totals"`
}
