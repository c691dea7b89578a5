// Package symbol resolves a user-supplied ticker to its numeric stock
// locate and filters order-scoped traffic by that locate (component D).
package symbol

import "itchbook/internal/itch"

// Filter tracks the target symbol's resolution state. It starts unmatched
// and transitions permanently to matched on the first StockDirectory
// record whose symbol equals the target.
type Filter struct {
	target  string
	locate  uint16
	matched bool
}

// New returns a Filter for the given target symbol (compared space-stripped
// per spec.md §4.4).
func New(target string) *Filter {
	return &Filter{target: target}
}

// Matched reports whether the target locate has been resolved.
func (f *Filter) Matched() bool { return f.matched }

// Locate returns the resolved locate. Only meaningful once Matched is true.
func (f *Filter) Locate() uint16 { return f.locate }

// Observe processes a StockDirectory record. If unmatched and the record's
// symbol equals the target, it resolves and locks in the locate. A
// StockDirectory for a different symbol, seen after the target is already
// matched, has no effect: resolution is permanent.
func (f *Filter) Observe(d itch.StockDirectory) {
	if f.matched {
		return
	}
	if d.Stock.Trimmed() == f.target {
		f.locate = d.StockLocate
		f.matched = true
	}
}

// AcceptLocate reports whether an order-scoped message carrying locate
// should be forwarded to the engine. The pipeline calls it for the two
// book-mutating messages that are routed by locate (A, F); the other
// locate-carrying messages are decoded and discarded without consulting it.
func (f *Filter) AcceptLocate(locate uint16) bool {
	return f.matched && locate == f.locate
}
