package models

type ShippingMethod struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	EstimatedDays string  `json:"estimatedDays"`
}

type ShippingCalculation struct {
	Options       []ShippingMethod `json:"options"`
	FreeThreshold float64          `json:"free_threshold"`
	CartTotal     float64          `json:"cart_total"`
	IsFree        bool             `json:"is_free"`
}
