package invoice

import (
	"testing"
	"time"

	"go-scanify-pos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBill(mode model.BillMode) *model.Bill {
	return &model.Bill{
		Date:     time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Customer: model.Customer{Name: "Asha", Phone: "9876543210"},
		Staff:    &model.Staff{Name: "Priya"},
		Mode:     mode,
		Total:    190.00,
		Items: []model.BillItem{
			{Barcode: "12345", Name: "Soap", Discount: "5%", FinalPrice: 190, Qty: 1, Action: mode},
		},
	}
}

func TestRenderSellInvoice(t *testing.T) {
	doc, err := Render(testBill(model.BillModeSell))
	require.NoError(t, err)

	assert.Contains(t, doc, "Asha")
	assert.Contains(t, doc, "9876543210")
	assert.Contains(t, doc, "Priya")
	assert.Contains(t, doc, "Soap")
	assert.Contains(t, doc, "190.00")
	assert.Contains(t, doc, "Selling Items")
	assert.Contains(t, doc, "01/06/2025")
}

func TestRenderReturnInvoice(t *testing.T) {
	doc, err := Render(testBill(model.BillModeReturn))
	require.NoError(t, err)

	assert.Contains(t, doc, "Return")
	assert.Contains(t, doc, "Returning Items")
}

func TestRenderEscapesCustomerInput(t *testing.T) {
	bill := testBill(model.BillModeSell)
	bill.Customer.Name = "<script>alert(1)</script>"

	doc, err := Render(bill)
	require.NoError(t, err)
	assert.NotContains(t, doc, "<script>")
}

func TestRenderIsPure(t *testing.T) {
	bill := testBill(model.BillModeSell)
	a, err := Render(bill)
	require.NoError(t, err)
	b, err := Render(bill)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
