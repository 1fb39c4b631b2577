package billing

import (
	"fmt"
	"net/url"
	"strings"
)

// ComposeShareMessage renders the bill summary sent to the customer. The
// layout is fixed: greeting, invoice handle, one line per item, total, then
// payment mode and status.
func ComposeShareMessage(b Bill) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Thank you for your purchase from %s!\n\n", b.ShopName))
	sb.WriteString("Bill Summary:\n")
	sb.WriteString(fmt.Sprintf("Invoice ID: #%s\n", b.ShortID()))

	for _, item := range b.Items {
		sb.WriteString(fmt.Sprintf("%s (x%d) - ₹%s\n", item.Name, item.Quantity, item.Subtotal().StringFixed(2)))
	}

	sb.WriteString(fmt.Sprintf("\nTotal Amount: ₹%s\n", b.TotalAmount.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Payment: %s (%s)\n\nThank you!", b.PaymentMode, b.PaymentStatus))

	return sb.String()
}

// ShareLink builds the WhatsApp deep link carrying the share message,
// addressed to the customer's phone with the given country calling code.
// Delivery is entirely the share target's problem; there is no callback.
func ShareLink(b Bill, countryCode string) string {
	msg := ComposeShareMessage(b)
	return fmt.Sprintf("https://wa.me/%s%s?text=%s", countryCode, b.CustomerPhone, url.QueryEscape(msg))
}
