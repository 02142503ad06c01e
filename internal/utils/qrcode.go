package utils

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"shopease_back_end/internal/models"
)

// OrderQRCode encode l'identifiant et le total de la commande en PNG
func OrderQRCode(order models.Order, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	payload := fmt.Sprintf("SHOPEASE:ORDER:%s:%.2f", order.ID, order.Totals.Total)
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("génération QR: %w", err)
	}
	return png, nil
}
