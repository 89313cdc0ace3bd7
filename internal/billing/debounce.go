package billing

import "time"

// Debouncer suppresses transport-level duplicate delivery of the same
// physical scan: a barcode seen again inside the window is dropped. Every
// event that passes the filter counts as a genuine scan (+1 semantics).
type Debouncer struct {
	window time.Duration
	seen   map[string]time.Time
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		seen:   make(map[string]time.Time),
	}
}

// Duplicate reports whether the barcode was already accepted inside the
// window. A non-duplicate is recorded as the new last-seen time; expired
// entries are evicted on the way, so the set stays bounded by the scan
// rate over one window rather than growing for the session's lifetime.
func (d *Debouncer) Duplicate(barcode string, at time.Time) bool {
	if last, ok := d.seen[barcode]; ok && at.Sub(last) < d.window {
		return true
	}
	for b, last := range d.seen {
		if at.Sub(last) >= d.window {
			delete(d.seen, b)
		}
	}
	d.seen[barcode] = at
	return false
}

// Forget clears one barcode, so a removed or failed scan can be retried
// immediately.
func (d *Debouncer) Forget(barcode string) {
	delete(d.seen, barcode)
}

// Reset clears the whole seen set alongside a draft reset.
func (d *Debouncer) Reset() {
	d.seen = make(map[string]time.Time)
}
