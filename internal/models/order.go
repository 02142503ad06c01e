package models

import "time"

type Order struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Items           []CartItem `json:"items"`
	Totals          Totals     `json:"totals"`
	ShippingMethod  string     `json:"shippingMethod"`
	ShippingAddress Address    `json:"shippingAddress"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
}

const OrderStatusConfirmed = "confirmed"
