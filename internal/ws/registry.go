package ws

import (
	"encoding/json"
	"sync"

	"go-scanify-pos/internal/billing"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Role of a registered connection. Each staff member holds at most one
// authoritative connection per role at any time.
type Role string

const (
	RoleScan Role = "scan"
	RoleBill Role = "bill"
)

// Conn is the slice of a websocket connection the registry needs. Keeping
// it an interface lets tests register fakes without fasthttp.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client wraps one live connection plus its registration state. Bill
// clients additionally carry the session-local draft mirror.
type Client struct {
	conn    Conn
	writeMu sync.Mutex // websocket conns are not safe for concurrent writes

	staffID string
	role    Role

	// bill role only
	draftMu sync.Mutex
	draft   *billing.Draft
	seen    *billing.Debouncer
}

func (c *Client) send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

type staffSession struct {
	scan *Client
	bill *Client
}

// Registry maps a staff identifier to at most one scan and one bill
// connection. It is shared mutable state; every operation is a single
// atomic step under the mutex, so there is no cross-staff contention.
// Injected rather than process-global so it is testable and could be
// swapped for a distributed backing store.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*staffSession
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*staffSession),
		log:      log,
	}
}

// Register binds a client to the staff's slot for its role, replacing any
// existing connection. The superseded connection is left open but
// orphaned: it no longer matches a live slot, so its later close event is
// a no-op.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.sessions[c.staffID]
	if entry == nil {
		entry = &staffSession{}
		r.sessions[c.staffID] = entry
	}
	switch c.role {
	case RoleScan:
		entry.scan = c
	case RoleBill:
		entry.bill = c
	}
	r.log.Info("ws client registered",
		zap.String("staff_id", c.staffID),
		zap.String("role", string(c.role)))
}

// Bill returns the staff's live billing client, or nil.
func (r *Registry) Bill(staffID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[staffID]; ok {
		return entry.bill
	}
	return nil
}

// Scan returns the staff's live scan client, or nil.
func (r *Registry) Scan(staffID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[staffID]; ok {
		return entry.scan
	}
	return nil
}

// Unregister clears whichever slot still holds the client and deletes the
// staff entry once both slots are empty. A superseded client matches no
// slot and falls through silently.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for staffID, entry := range r.sessions {
		if entry.scan == c {
			entry.scan = nil
		}
		if entry.bill == c {
			entry.bill = nil
		}
		if entry.scan == nil && entry.bill == nil {
			delete(r.sessions, staffID)
			r.log.Info("ws session cleaned up", zap.String("staff_id", staffID))
		}
	}
}
