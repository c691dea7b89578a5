// Package book implements the per-order limit order book engine
// (component E): two price-indexed ladders, a global order-ref index, and
// the add/execute/cancel/delete/replace operations with the conservation
// invariants I1–I5.
package book

import "itchbook/internal/itch"

// Order is a resting order. remaining reaching zero, Delete, or Replace all
// destroy it. The intrusive next/prev pointers let a PriceLevel act as an
// O(1)-removal FIFO without a second container.
type Order struct {
	Ref       uint64
	Side      itch.Side
	Price     uint32
	Remaining uint32

	level *PriceLevel
	next  *Order
	prev  *Order
}

// reset clears an Order for reuse from the pool. Intrusive pointers must be
// nil before an order re-enters circulation, or a stale link could splice a
// retired node back into a live level.
func (o *Order) reset() {
	o.Ref = 0
	o.Side = 0
	o.Price = 0
	o.Remaining = 0
	o.level = nil
	o.next = nil
	o.prev = nil
}
