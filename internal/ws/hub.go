package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-scanify-pos/internal/billing"
	"go-scanify-pos/internal/model"
	"go-scanify-pos/internal/service"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

const (
	defaultLookupTimeout  = 5 * time.Second
	defaultDebounceWindow = 2 * time.Second
)

// ProductLookup resolves a barcode to catalog data for the action's
// required unit state (sell needs an available unit, return a sold one).
type ProductLookup interface {
	LookupByBarcode(ctx context.Context, barcode, action string) (*model.ScannedProduct, error)
}

// Message is the envelope for every frame on the relay socket.
type Message struct {
	Type       string `json:"type"`
	StaffID    string `json:"staffId,omitempty"`
	ClientType string `json:"clientType,omitempty"`
	Barcode    string `json:"barcode,omitempty"`
	Action     string `json:"action,omitempty"`
}

type barcodeBroadcast struct {
	Type    string `json:"type"`
	Barcode string `json:"barcode"`
	Action  string `json:"action"`
}

type draftUpdate struct {
	Type  string             `json:"type"`
	Mode  billing.Mode       `json:"mode"`
	Items []billing.LineItem `json:"items"`
	Total float64            `json:"total"`
}

type scanRejected struct {
	Type      string `json:"type"`
	Barcode   string `json:"barcode"`
	Reason    string `json:"reason"`
	Retryable bool   `json:"retryable"`
}

// Hub dispatches relay traffic: it pairs scan and bill connections through
// the registry, forwards scan events at-most-once, and keeps each bill
// session's draft mirror up to date. Forwarding is O(1) and never blocks a
// read loop; draft application (which does I/O) runs on its own goroutine.
type Hub struct {
	registry *Registry
	products ProductLookup
	log      *zap.Logger

	lookupTimeout  time.Duration
	debounceWindow time.Duration
}

func NewHub(registry *Registry, products ProductLookup, log *zap.Logger) *Hub {
	return &Hub{
		registry:       registry,
		products:       products,
		log:            log,
		lookupTimeout:  defaultLookupTimeout,
		debounceWindow: defaultDebounceWindow,
	}
}

// HandleConn serves one websocket connection until it closes. It is the
// read loop fiber hands each upgraded connection to.
func (h *Hub) HandleConn(conn *websocket.Conn) {
	client := &Client{conn: conn}
	defer h.registry.Unregister(client)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleMessage(client, raw)
	}
}

func (h *Hub) handleMessage(c *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.log.Warn("ws message unparseable", zap.Error(err))
		return
	}

	switch msg.Type {
	case "register":
		h.register(c, msg)
	case "barcode-scanned":
		h.relayScan(msg)
	case "remove-item":
		h.removeItem(c, msg.Barcode)
	case "reset-draft":
		h.resetDraft(c)
	default:
		h.log.Warn("ws message of unknown type dropped", zap.String("type", msg.Type))
	}
}

func (h *Hub) register(c *Client, msg Message) {
	if msg.StaffID == "" || (msg.ClientType != string(RoleScan) && msg.ClientType != string(RoleBill)) {
		h.log.Warn("ws register message incomplete",
			zap.String("staff_id", msg.StaffID),
			zap.String("client_type", msg.ClientType))
		return
	}

	c.staffID = msg.StaffID
	c.role = Role(msg.ClientType)
	if c.role == RoleBill {
		// A repeated register frame must not wipe an in-flight draft, and
		// the initialization has to synchronize with scan application.
		c.draftMu.Lock()
		if c.draft == nil {
			c.draft = billing.NewDraft()
			c.seen = billing.NewDebouncer(h.debounceWindow)
		}
		c.draftMu.Unlock()
	}
	h.registry.Register(c)
}

// relayScan is the event router: O(1), stateless beyond the registry
// lookup. Without a live bill connection the event is dropped and logged,
// never queued; scan devices do not await delivery.
func (h *Hub) relayScan(msg Message) {
	if msg.StaffID == "" || msg.Barcode == "" {
		return
	}
	action := msg.Action
	if action == "" {
		action = string(billing.ModeSell)
	}

	bill := h.registry.Bill(msg.StaffID)
	if bill == nil {
		h.log.Warn("scan dropped, no active bill session",
			zap.String("staff_id", msg.StaffID),
			zap.String("barcode", msg.Barcode))
		return
	}

	if err := bill.send(barcodeBroadcast{Type: "barcode-broadcast", Barcode: msg.Barcode, Action: action}); err != nil {
		h.log.Warn("barcode broadcast failed",
			zap.String("staff_id", msg.StaffID),
			zap.String("barcode", msg.Barcode),
			zap.Error(err))
		return
	}

	go h.applyScan(bill, msg.Barcode, action)
}

// applyScan folds one delivered scan into the bill session's draft mirror
// and pushes the resulting snapshot (or a rejection) to the bill client.
func (h *Hub) applyScan(bill *Client, barcode, action string) {
	bill.draftMu.Lock()
	defer bill.draftMu.Unlock()

	if bill.seen.Duplicate(barcode, time.Now()) {
		return // transport-level redelivery, not a second physical scan
	}

	implied := billing.ModeFromAction(action)
	if mode := bill.draft.Mode(); mode != billing.ModeNone && implied != mode {
		bill.seen.Forget(barcode)
		h.reject(bill, barcode, "cannot mix sell and return items in one bill", false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.lookupTimeout)
	defer cancel()

	product, err := h.products.LookupByBarcode(ctx, barcode, action)
	if err != nil {
		bill.seen.Forget(barcode)
		if errors.Is(err, service.ErrLookupNotFound) {
			h.reject(bill, barcode, "product not found or not in the required state", false)
		} else {
			h.log.Error("product lookup failed",
				zap.String("staff_id", bill.staffID),
				zap.String("barcode", barcode),
				zap.Error(err))
			h.reject(bill, barcode, "product lookup failed, scan again", true)
		}
		return
	}

	next, err := bill.draft.AddOrIncrement(billing.NewLineItem(product), billing.DecideMode(product.Sold))
	if err != nil {
		bill.seen.Forget(barcode)
		h.reject(bill, barcode, err.Error(), false)
		return
	}

	bill.draft = next
	h.pushDraft(bill)
}

func (h *Hub) removeItem(c *Client, barcode string) {
	if c.role != RoleBill || barcode == "" {
		return
	}
	c.draftMu.Lock()
	defer c.draftMu.Unlock()
	c.draft = c.draft.Remove(barcode)
	c.seen.Forget(barcode)
	h.pushDraft(c)
}

func (h *Hub) resetDraft(c *Client) {
	if c.role != RoleBill {
		return
	}
	c.draftMu.Lock()
	defer c.draftMu.Unlock()
	c.draft = c.draft.Reset()
	c.seen.Reset()
	h.pushDraft(c)
}

func (h *Hub) pushDraft(c *Client) {
	update := draftUpdate{
		Type:  "draft-update",
		Mode:  c.draft.Mode(),
		Items: c.draft.Items(),
		Total: c.draft.Total(),
	}
	if err := c.send(update); err != nil {
		h.log.Warn("draft update push failed",
			zap.String("staff_id", c.staffID),
			zap.Error(err))
	}
}

func (h *Hub) reject(c *Client, barcode, reason string, retryable bool) {
	if err := c.send(scanRejected{Type: "scan-rejected", Barcode: barcode, Reason: reason, Retryable: retryable}); err != nil {
		h.log.Warn("scan rejection push failed",
			zap.String("staff_id", c.staffID),
			zap.Error(err))
	}
}
