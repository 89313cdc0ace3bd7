package billing

import (
	"errors"

	"go-scanify-pos/internal/model"
)

// Mode of a draft: sell empties inventory, return refills it. Locked by the
// first accepted item for the lifetime of the draft.
type Mode string

const (
	ModeNone   Mode = ""
	ModeSell   Mode = "sell"
	ModeReturn Mode = "return"
)

// ErrModeConflict is returned when a scan implies the opposite mode of an
// already-locked draft. The draft is left untouched.
var ErrModeConflict = errors.New("cannot mix sell and return items in one draft")

// DecideMode derives the transaction mode from the looked-up unit's state:
// a unit already marked sold can only be coming back, an available one can
// only be leaving.
func DecideMode(sold bool) Mode {
	if sold {
		return ModeReturn
	}
	return ModeSell
}

// ModeFromAction maps a scan event's action field to a mode. Scan devices
// that omit the action default to sell.
func ModeFromAction(action string) Mode {
	if action == string(ModeReturn) {
		return ModeReturn
	}
	return ModeSell
}

// LineItem is one barcode-keyed entry of a draft. Quantity lives on the
// line, not the key: one barcode is one physical unit, scanned qty times.
type LineItem struct {
	Barcode       string  `json:"barcode"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand"`
	Category      string  `json:"category"`
	Unit          string  `json:"unit"`
	ImageURL      string  `json:"image_url"`
	OriginalPrice float64 `json:"original_price"`
	Discount      string  `json:"discount"`
	FinalPrice    float64 `json:"final_price"`
	Qty           int     `json:"qty"`
}

// NewLineItem builds a qty-1 line from a lookup result, pricing it through
// the discount engine.
func NewLineItem(p *model.ScannedProduct) LineItem {
	return LineItem{
		Barcode:       p.Barcode,
		Name:          p.Name,
		Brand:         p.Brand,
		Category:      p.Category,
		Unit:          p.Unit,
		ImageURL:      p.ImageURL,
		OriginalPrice: Round2(p.Price),
		Discount:      p.Discount,
		FinalPrice:    FinalPrice(p.Price, p.Discount),
		Qty:           1,
	}
}

// Draft is the in-progress, unpersisted bill assembled from scan events.
// Transitions are pure: each returns a new snapshot and never mutates the
// receiver, so a billing session can hold the latest snapshot and tests
// need no UI or socket at all.
type Draft struct {
	mode  Mode
	items []LineItem
}

func NewDraft() *Draft {
	return &Draft{mode: ModeNone}
}

func (d *Draft) Mode() Mode { return d.mode }

// Items returns a copy of the ordered line items.
func (d *Draft) Items() []LineItem {
	out := make([]LineItem, len(d.items))
	copy(out, d.items)
	return out
}

func (d *Draft) Len() int { return len(d.items) }

// Total recomputes the draft total from its line items.
func (d *Draft) Total() float64 {
	return Total(d.items)
}

// Find returns the line item for a barcode, if present.
func (d *Draft) Find(barcode string) (LineItem, bool) {
	for _, item := range d.items {
		if item.Barcode == barcode {
			return item, true
		}
	}
	return LineItem{}, false
}

// AddOrIncrement applies one accepted scan. The first accepted item locks
// the draft mode; a later scan implying the opposite mode is rejected with
// ErrModeConflict and the receiver snapshot stays valid. Re-scanning a
// barcode already on the draft increments its quantity.
func (d *Draft) AddOrIncrement(item LineItem, implied Mode) (*Draft, error) {
	if d.mode != ModeNone && implied != d.mode {
		return d, ErrModeConflict
	}

	next := &Draft{mode: d.mode, items: d.Items()}
	if next.mode == ModeNone {
		next.mode = implied
	}

	for i := range next.items {
		if next.items[i].Barcode == item.Barcode {
			next.items[i].Qty++
			return next, nil
		}
	}

	item.Qty = 1
	next.items = append(next.items, item)
	return next, nil
}

// Remove deletes a barcode's line from the draft, re-enabling rescans of
// that barcode. Removing an unknown barcode is a no-op.
func (d *Draft) Remove(barcode string) *Draft {
	next := &Draft{mode: d.mode, items: make([]LineItem, 0, len(d.items))}
	for _, item := range d.items {
		if item.Barcode != barcode {
			next.items = append(next.items, item)
		}
	}
	return next
}

// Reset drops every item and unlocks the mode.
func (d *Draft) Reset() *Draft {
	return NewDraft()
}
