package mailer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/Gracdom/Ecommercebabyproducts-sub001/internal/domain"
)

func euros(cents int64) string {
	return fmt.Sprintf("%.2f €", float64(cents)/100)
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h1>¡Gracias por tu pedido, {{.FirstName}}!</h1>
  <p>Hemos recibido tu pago y tu pedido <strong>{{.Reference}}</strong> está en preparación.</p>
  <table style="width:100%; border-collapse: collapse;">
    <tr><td>Subtotal</td><td style="text-align:right;">{{.Subtotal}}</td></tr>
    <tr><td>Envío ({{.ShippingName}})</td><td style="text-align:right;">{{.Shipping}}</td></tr>
    <tr><td><strong>Total</strong></td><td style="text-align:right;"><strong>{{.Total}}</strong></td></tr>
  </table>
  <h2>Dirección de envío</h2>
  <p>{{.Address}}<br>{{.Postcode}} {{.Town}}<br>{{.Country}}</p>
  <p>Te avisaremos por email cuando tu pedido salga de nuestro almacén.</p>
</body>
</html>`))

var salesNotificationTmpl = template.Must(template.New("sales").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h1>Nuevo pedido {{.Reference}}</h1>
  <p>Sesión de pago: {{.SessionID}}</p>
  <ul>
    <li>Cliente: {{.CustomerName}} &lt;{{.Email}}&gt;{{if .Phone}} — {{.Phone}}{{end}}</li>
    <li>Envío: {{.ShippingName}} ({{.Shipping}})</li>
    <li>Destino: {{.Address}}, {{.Postcode}} {{.Town}}, {{.Country}}</li>
    <li>Total: <strong>{{.Total}}</strong></li>
  </ul>
</body>
</html>`))

type templateData struct {
	Reference    string
	SessionID    string
	FirstName    string
	CustomerName string
	Email        string
	Phone        string
	ShippingName string
	Subtotal     string
	Shipping     string
	Total        string
	Address      string
	Postcode     string
	Town         string
	Country      string
}

func dataFromOrder(order *domain.Order) templateData {
	name := strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName)
	return templateData{
		Reference:    order.InternalReference,
		SessionID:    order.CheckoutSessionID,
		FirstName:    order.Customer.FirstName,
		CustomerName: name,
		Email:        order.Customer.Email,
		Phone:        order.Customer.Phone,
		ShippingName: order.ShippingService.Name,
		Subtotal:     euros(order.SubtotalCents),
		Shipping:     euros(order.ShippingCents),
		Total:        euros(order.TotalCents),
		Address:      order.ShippingAddress.Address,
		Postcode:     order.ShippingAddress.Postcode,
		Town:         order.ShippingAddress.Town,
		Country:      order.ShippingAddress.Country,
	}
}

// ConfirmationHTML renders the customer order-confirmation body.
func ConfirmationHTML(order *domain.Order) (string, error) {
	var sb strings.Builder
	if err := confirmationTmpl.Execute(&sb, dataFromOrder(order)); err != nil {
		return "", fmt.Errorf("render confirmation email: %w", err)
	}
	return sb.String(), nil
}

// SalesNotificationHTML renders the internal new-order notification body.
func SalesNotificationHTML(order *domain.Order) (string, error) {
	var sb strings.Builder
	if err := salesNotificationTmpl.Execute(&sb, dataFromOrder(order)); err != nil {
		return "", fmt.Errorf("render sales notification email: %w", err)
	}
	return sb.String(), nil
}
