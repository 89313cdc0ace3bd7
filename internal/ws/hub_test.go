package ws

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go-scanify-pos/internal/model"
	"go-scanify-pos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeLookup serves scans from an in-memory unit table.
type fakeLookup struct {
	mu    sync.Mutex
	units map[string]*model.ScannedProduct // barcode -> product (Sold = current state)
	err   error
	calls int
}

func (f *fakeLookup) LookupByBarcode(ctx context.Context, barcode, action string) (*model.ScannedProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.units[barcode]
	if !ok || p.Sold != (action == "return") {
		return nil, fmt.Errorf("%w: barcode %s", service.ErrLookupNotFound, barcode)
	}
	return p, nil
}

func newTestHub(lookup *fakeLookup) *Hub {
	return NewHub(NewRegistry(zap.NewNop()), lookup, zap.NewNop())
}

func registerBill(t *testing.T, h *Hub, staffID string) (*Client, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	c := &Client{conn: conn}
	h.handleMessage(c, []byte(`{"type":"register","staffId":"`+staffID+`","clientType":"bill"}`))
	require.Equal(t, RoleBill, c.role)
	return c, conn
}

func lastOfType(t *testing.T, conn *fakeConn, typ string) map[string]interface{} {
	t.Helper()
	var found map[string]interface{}
	for _, m := range conn.messages(t) {
		if m["type"] == typ {
			found = m
		}
	}
	require.NotNil(t, found, "no %s message received", typ)
	return found
}

func countOfType(t *testing.T, conn *fakeConn, typ string) int {
	t.Helper()
	n := 0
	for _, m := range conn.messages(t) {
		if m["type"] == typ {
			n++
		}
	}
	return n
}

func TestHubForwardsScanToBillConnection(t *testing.T) {
	h := newTestHub(&fakeLookup{units: map[string]*model.ScannedProduct{}})
	_, conn := registerBill(t, h, "S1")

	h.relayScan(Message{Type: "barcode-scanned", StaffID: "S1", Barcode: "12345"})

	broadcast := lastOfType(t, conn, "barcode-broadcast")
	assert.Equal(t, "12345", broadcast["barcode"])
	assert.Equal(t, "sell", broadcast["action"]) // omitted action defaults to sell
}

func TestHubDropsScanWithoutBillConnection(t *testing.T) {
	lookup := &fakeLookup{units: map[string]*model.ScannedProduct{}}
	h := newTestHub(lookup)

	// no bill session registered: dropped, not queued
	h.relayScan(Message{Type: "barcode-scanned", StaffID: "S1", Barcode: "12345"})
	assert.Equal(t, 0, lookup.calls)
}

func TestHubSupersededBillConnectionStopsReceiving(t *testing.T) {
	h := newTestHub(&fakeLookup{units: map[string]*model.ScannedProduct{}})
	_, oldConn := registerBill(t, h, "S1")
	_, newConn := registerBill(t, h, "S1")

	h.relayScan(Message{Type: "barcode-scanned", StaffID: "S1", Barcode: "12345"})

	assert.Equal(t, 0, countOfType(t, oldConn, "barcode-broadcast"))
	assert.Equal(t, 1, countOfType(t, newConn, "barcode-broadcast"))
}

func TestHubRepeatedRegisterKeepsDraft(t *testing.T) {
	lookup := &fakeLookup{units: map[string]*model.ScannedProduct{
		"12345": {Barcode: "12345", Name: "Soap", Price: 100, Sold: false},
	}}
	h := newTestHub(lookup)
	bill, _ := registerBill(t, h, "S1")

	h.applyScan(bill, "12345", "sell")
	require.Equal(t, 1, bill.draft.Len())

	// reconnecting clients re-send the register frame
	h.handleMessage(bill, []byte(`{"type":"register","staffId":"S1","clientType":"bill"}`))
	assert.Equal(t, 1, bill.draft.Len())

	// the debounce state survives too: redelivery is still suppressed
	h.applyScan(bill, "12345", "sell")
	item, ok := bill.draft.Find("12345")
	require.True(t, ok)
	assert.Equal(t, 1, item.Qty)
	assert.Equal(t, 1, lookup.calls)
}

func TestHubRegisterDuringScanApplication(t *testing.T) {
	lookup := &fakeLookup{units: map[string]*model.ScannedProduct{
		"12345": {Barcode: "12345", Name: "Soap", Price: 100, Sold: false},
	}}
	h := newTestHub(lookup)
	bill, _ := registerBill(t, h, "S1")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			h.applyScan(bill, "12345", "sell")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			h.handleMessage(bill, []byte(`{"type":"register","staffId":"S1","clientType":"bill"}`))
		}
	}()
	wg.Wait()

	// all redeliveries land inside the debounce window: one line item, qty 1
	item, ok := bill.draft.Find("12345")
	require.True(t, ok)
	assert.Equal(t, 1, item.Qty)
}

func TestHubApplyScanBuildsDraft(t *testing.T) {
	h := newTestHub(&fakeLookup{units: map[string]*model.ScannedProduct{
		"12345": {Barcode: "12345", Name: "Soap", Price: 200, Discount: "5%", Sold: false},
	}})
	bill, conn := registerBill(t, h, "S1")

	h.applyScan(bill, "12345", "sell")

	update := lastOfType(t, conn, "draft-update")
	assert.Equal(t, "sell", update["mode"])
	assert.Equal(t, 190.00, update["total"])
	items := update["items"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, 190.00, first["final_price"])
	assert.Equal(t, 1.0, first["qty"])
}

func TestHubApplyScanDebouncesRedelivery(t *testing.T) {
	lookup := &fakeLookup{units: map[string]*model.ScannedProduct{
		"12345": {Barcode: "12345", Name: "Soap", Price: 100, Sold: false},
	}}
	h := newTestHub(lookup)
	bill, _ := registerBill(t, h, "S1")

	h.applyScan(bill, "12345", "sell")
	h.applyScan(bill, "12345", "sell") // same frame redelivered inside the window

	item, ok := bill.draft.Find("12345")
	require.True(t, ok)
	assert.Equal(t, 1, item.Qty)
	assert.Equal(t, 1, lookup.calls)
}

func TestHubApplyScanRejectsModeConflict(t *testing.T) {
	lookup := &fakeLookup{units: map[string]*model.ScannedProduct{
		"11111": {Barcode: "11111", Name: "Soap", Price: 100, Sold: false},
		"22222": {Barcode: "22222", Name: "Oil", Price: 50, Sold: true},
	}}
	h := newTestHub(lookup)
	bill, conn := registerBill(t, h, "S1")

	h.applyScan(bill, "11111", "sell")
	h.applyScan(bill, "22222", "return")

	rejected := lastOfType(t, conn, "scan-rejected")
	assert.Equal(t, "22222", rejected["barcode"])
	assert.Equal(t, false, rejected["retryable"])

	// prior line items untouched
	assert.Equal(t, 1, bill.draft.Len())
	_, ok := bill.draft.Find("22222")
	assert.False(t, ok)
}

func TestHubApplyScanLookupFailureIsRetryable(t *testing.T) {
	lookup := &fakeLookup{err: context.DeadlineExceeded}
	h := newTestHub(lookup)
	bill, conn := registerBill(t, h, "S1")

	h.applyScan(bill, "12345", "sell")
	rejected := lastOfType(t, conn, "scan-rejected")
	assert.Equal(t, true, rejected["retryable"])

	// retry is not debounced away
	lookup.err = nil
	lookup.units = map[string]*model.ScannedProduct{
		"12345": {Barcode: "12345", Name: "Soap", Price: 100, Sold: false},
	}
	h.applyScan(bill, "12345", "sell")
	item, ok := bill.draft.Find("12345")
	require.True(t, ok)
	assert.Equal(t, 1, item.Qty)
}

func TestHubRemoveItemAllowsRescan(t *testing.T) {
	lookup := &fakeLookup{units: map[string]*model.ScannedProduct{
		"12345": {Barcode: "12345", Name: "Soap", Price: 100, Sold: false},
	}}
	h := newTestHub(lookup)
	bill, _ := registerBill(t, h, "S1")

	h.applyScan(bill, "12345", "sell")
	h.handleMessage(bill, []byte(`{"type":"remove-item","barcode":"12345"}`))
	assert.Equal(t, 0, bill.draft.Len())

	h.applyScan(bill, "12345", "sell")
	item, ok := bill.draft.Find("12345")
	require.True(t, ok)
	assert.Equal(t, 1, item.Qty)
}

func TestHubResetDraft(t *testing.T) {
	lookup := &fakeLookup{units: map[string]*model.ScannedProduct{
		"12345": {Barcode: "12345", Name: "Soap", Price: 100, Sold: false},
	}}
	h := newTestHub(lookup)
	bill, conn := registerBill(t, h, "S1")

	h.applyScan(bill, "12345", "sell")
	h.handleMessage(bill, []byte(`{"type":"reset-draft"}`))

	assert.Equal(t, 0, bill.draft.Len())
	update := lastOfType(t, conn, "draft-update")
	assert.Equal(t, "", update["mode"])
	assert.Equal(t, 0.00, update["total"])
}
