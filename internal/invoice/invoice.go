// Package invoice renders a finalized bill into a printable HTML
// document. Rendering is a pure function of the persisted bill: it reads
// nothing else and changes nothing.
package invoice

import (
	"fmt"
	"html/template"
	"strings"

	"go-scanify-pos/internal/model"
)

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"mul":   func(price float64, qty int) float64 { return price * float64(qty) },
	"inc":   func(i int) int { return i + 1 },
}).Parse(`<html>
<head><title>{{.Title}}</title><style>
  body { font-family: sans-serif; padding: 20px; }
  h2 { text-align: center; color: #333; }
  table { width: 100%; border-collapse: collapse; margin-top: 20px; }
  th, td { border: 1px solid #999; padding: 8px; text-align: center; }
  .text-right { text-align: right; }
  .summary { margin-top: 20px; text-align: right; font-size: 18px; }
  .info strong { display: inline-block; width: 150px; }
  footer { margin-top: 40px; text-align: center; color: #888; }
</style></head>
<body>
  <h2>Scanify | Smart Retail System {{.Heading}}</h2>
  <div class="info">
    <p><strong>Customer Name:</strong> {{.Bill.Customer.Name}}</p>
    <p><strong>Phone Number:</strong> {{.Bill.Customer.Phone}}</p>
    <p><strong>Served By:</strong> {{.StaffName}}</p>
    <p><strong>Date:</strong> {{.Date}}</p>
  </div>
  <h3>{{.ItemsHeading}} Items</h3>
  <table><thead><tr>
    <th>#</th><th>Name</th><th>Qty</th><th>Discount</th><th>Price</th>
  </tr></thead><tbody>
  {{range $i, $item := .Bill.Items}}
    <tr><td>{{inc $i}}</td><td>{{$item.Name}}</td><td>{{$item.Qty}}</td><td>{{$item.Discount}}</td>
    <td>&#8377;{{money (mul $item.FinalPrice $item.Qty)}}</td></tr>
  {{end}}
    <tr><td colspan="4" class="text-right"><strong>Total</strong></td>
    <td><strong>&#8377;{{money .Bill.Total}}</strong></td></tr>
  </tbody></table>
  <div class="summary"><strong>Net Total:</strong> &#8377;{{money .Bill.Total}}</div>
  <footer>Copyright &copy; Scanify 2025</footer>
</body>
</html>`))

type invoiceData struct {
	Bill         *model.Bill
	Title        string
	Heading      string
	ItemsHeading string
	StaffName    string
	Date         string
}

// Render produces the invoice document for a persisted bill.
func Render(bill *model.Bill) (string, error) {
	heading := "Bill"
	itemsHeading := "Selling"
	if bill.Mode == model.BillModeReturn {
		heading = "Return"
		itemsHeading = "Returning"
	}

	staffName := ""
	if bill.Staff != nil {
		staffName = bill.Staff.Name
	}

	data := invoiceData{
		Bill:         bill,
		Title:        fmt.Sprintf("%s-%s.pdf", strings.ReplaceAll(bill.Customer.Name, " ", "_"), bill.Date.Format("2006-01-02")),
		Heading:      heading,
		ItemsHeading: itemsHeading,
		StaffName:    staffName,
		Date:         bill.Date.Format("02/01/2006"),
	}

	var sb strings.Builder
	if err := invoiceTmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
