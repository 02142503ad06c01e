package models

import "time"

type Preferences struct {
	Newsletter            bool   `json:"newsletter"`
	SMSUpdates            bool   `json:"smsUpdates"`
	DefaultShippingMethod string `json:"defaultShippingMethod"`
}

type User struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Age             int         `json:"age"`
	Phone           string      `json:"phone"`
	ShippingAddress Address     `json:"shippingAddress"`
	BillingAddress  Address     `json:"billingAddress"`
	Preferences     Preferences `json:"preferences"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Account est la forme stockée : l'utilisateur et le hash de son mot de passe.
// Le hash ne sort jamais de l'API.
type Account struct {
	User
	PasswordHash string `json:"passwordHash"`
}
