package email

import "fmt"

// BuildLowStockBody builds the HTML body for a low-stock alert email.
func BuildLowStockBody(productName string, stock, threshold int) string {
	headline := "Low stock warning"
	if stock == 0 {
		headline = "Out of stock"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
	<h2 style="color: #c0392b;">%s</h2>
	<table style="border-collapse: collapse;">
		<tr><td style="padding: 8px; font-weight: bold;">Product</td><td style="padding: 8px;">%s</td></tr>
		<tr><td style="padding: 8px; font-weight: bold;">Current stock</td><td style="padding: 8px;">%d</td></tr>
		<tr><td style="padding: 8px; font-weight: bold;">Alert threshold</td><td style="padding: 8px;">%d</td></tr>
	</table>
	<p>Review inventory on the admin dashboard.</p>
</body>
</html>`, headline, productName, stock, threshold)
}

// BuildRestockRequestBody builds the HTML body for a restock request email.
func BuildRestockRequestBody(productName string, quantity int, priority, notes string) string {
	notesRow := ""
	if notes != "" {
		notesRow = fmt.Sprintf(`<tr><td style="padding: 8px; font-weight: bold;">Notes</td><td style="padding: 8px;">%s</td></tr>`, notes)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #333;">
	<h2>Restock requested</h2>
	<table style="border-collapse: collapse;">
		<tr><td style="padding: 8px; font-weight: bold;">Product</td><td style="padding: 8px;">%s</td></tr>
		<tr><td style="padding: 8px; font-weight: bold;">Requested quantity</td><td style="padding: 8px;">%d</td></tr>
		<tr><td style="padding: 8px; font-weight: bold;">Priority</td><td style="padding: 8px;">%s</td></tr>
		%s
	</table>
</body>
</html>`, productName, quantity, priority, notesRow)
}
