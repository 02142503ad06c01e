package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/wneessen/go-mail"

	"shopease_back_end/internal/models"
)

// SMTPConfig regroupe les paramètres d'envoi
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer envoie les confirmations de commande via go-mail
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendOrderConfirmation envoie le récapitulatif HTML de la commande
func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, order models.Order) error {
	html, err := RenderOrderConfirmation(order)
	if err != nil {
		return err
	}

	msg, err := buildMessage(m.cfg.From, order.Email, "Order Confirmed - ShopEase #"+shortID(order.ID), html)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("client SMTP: %w", err)
	}

	log.Println("📤 Envoi de l'e-mail à", order.Email)
	return client.DialAndSendWithContext(ctx, msg)
}

func buildMessage(from, to, subject, html string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("expéditeur invalide: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("destinataire invalide: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	return msg, nil
}

// LogMailer remplace l'envoi quand SMTP n'est pas configuré
type LogMailer struct{}

func (LogMailer) SendOrderConfirmation(_ context.Context, order models.Order) error {
	log.Printf("📧 (SMTP désactivé) confirmation commande %s pour %s, total %.2f", order.ID, order.Email, order.Totals.Total)
	return nil
}

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"line":  func(item models.CartItem) float64 { return item.Product.Price * float64(item.Quantity) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Order Confirmed</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Order Confirmed!</h2>
		<p>Thank you for your purchase. Your order has been confirmed and will be shipped soon.</p>
		<p>Order <strong>{{.ID}}</strong></p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left;">Product</th>
					<th style="padding: 10px; text-align: left;">Qty</th>
					<th style="padding: 10px; text-align: left;">Price</th>
					<th style="padding: 10px; text-align: left;">Total</th>
				</tr>
			</thead>
			<tbody>
			{{range .Items}}
				<tr>
					<td style="padding: 10px;">{{.Product.Name}}</td>
					<td style="padding: 10px;">{{.Quantity}}</td>
					<td style="padding: 10px;">{{money .Product.Price}}</td>
					<td style="padding: 10px;">{{money (line .)}}</td>
				</tr>
			{{end}}
			</tbody>
		</table>
		<p>Subtotal: {{money .Totals.Subtotal}}</p>
		<p>Shipping: {{if .Totals.FreeShipping}}Free{{else}}{{money .Totals.Shipping}}{{end}}</p>
		<p>Tax (7%): {{money .Totals.Tax}}</p>
		<p><strong>Total: {{money .Totals.Total}}</strong></p>
	</div>
</body>
</html>`))

// RenderOrderConfirmation génère le HTML de confirmation (valeurs échappées)
func RenderOrderConfirmation(order models.Order) (string, error) {
	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, order); err != nil {
		return "", fmt.Errorf("rendu confirmation: %w", err)
	}
	return buf.String(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
