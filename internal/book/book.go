package book

import (
	"itchbook/internal/errs"
	"itchbook/internal/itch"
)

type indexEntry struct {
	side  itch.Side
	price uint32
}

// Stats accumulates the run counters used for the supplemented throughput
// report and for exercising the conservation property (P1) in tests.
type Stats struct {
	Added    uint64 // shares added across all AddOrder/AddOrderWithMpid
	Executed uint64 // shares removed by OrderExecuted/OrderExecutedWithPrice
	Canceled uint64 // shares removed by OrderCancel
	Deleted  uint64 // shares removed by OrderDelete (remaining at time of delete)
	Updates  uint64 // applied book-mutating events, for the emitter to count snapshots against
}

// Book is the single-threaded order book engine for one resolved symbol
// (component E). It owns two price ladders and the global order-ref index;
// nothing here is safe for concurrent use, by design (spec.md §5).
type Book struct {
	Bids *Ladder
	Asks *Ladder

	index map[uint64]indexEntry
	pool  *orderPool

	Stats Stats
}

// New returns an empty Book.
func New() *Book {
	return &Book{
		Bids:  NewLadder(),
		Asks:  NewLadder(),
		index: make(map[uint64]indexEntry),
		pool:  newOrderPool(),
	}
}

func (b *Book) ladder(side itch.Side) *Ladder {
	if side == itch.Buy {
		return b.Bids
	}
	return b.Asks
}

// Has reports whether ref currently has a live resting order. Used by the
// dispatch layer to filter the ref-only messages (X, D, E, C, U) that carry
// no locate per spec.md §4.4.
func (b *Book) Has(ref uint64) bool {
	_, ok := b.index[ref]
	return ok
}

// AddOrder inserts a new resting order. Fails with *errs.DuplicateOrderRef
// if ref is already live.
func (b *Book) AddOrder(ref uint64, side itch.Side, qty, price uint32, offset int64) error {
	if _, exists := b.index[ref]; exists {
		return &errs.DuplicateOrderRef{Offset: offset, Ref: ref}
	}
	o := b.pool.get()
	o.Ref = ref
	o.Side = side
	o.Price = price
	o.Remaining = qty

	lvl := b.ladder(side).GetOrCreate(price)
	lvl.Enqueue(o)
	b.index[ref] = indexEntry{side: side, price: price}

	b.Stats.Added += uint64(qty)
	b.Stats.Updates++
	return nil
}

// removeOrder splices o out of its level, deletes the level if it is now
// empty, and drops the index entry. Shared by Execute/Cancel-to-zero and
// Delete.
func (b *Book) removeOrder(ref uint64, entry indexEntry, o *Order) {
	lvl := o.level
	lvl.Remove(o)
	if lvl.Empty() {
		b.ladder(entry.side).Remove(entry.price)
	}
	delete(b.index, ref)
	b.pool.put(o)
}

// findResting locates the live Order for ref within its level's FIFO queue.
// The global index gives (side, price); the ladder lookup finds the level,
// and the level's queue is then walked from the head until ref is found,
// so the cost grows with the number of orders resting at that price.
func (b *Book) findResting(ref uint64, entry indexEntry) *Order {
	lvl := b.ladder(entry.side).Find(entry.price)
	if lvl == nil {
		return nil
	}
	for o := lvl.Head(); o != nil; o = o.next {
		if o.Ref == ref {
			return o
		}
	}
	return nil
}

// OrderExecuted applies a partial or full execution against ref. Absent
// refs are silently discarded (not our symbol, per spec.md §4.4/§4.5).
func (b *Book) OrderExecuted(ref uint64, execQty uint32, offset int64) error {
	entry, ok := b.index[ref]
	if !ok {
		return nil
	}
	o := b.findResting(ref, entry)
	if execQty > o.Remaining {
		return &errs.OverExecute{Offset: offset, Ref: ref, Remaining: o.Remaining, ExecQty: execQty}
	}
	o.level.TotalQty -= execQty
	o.Remaining -= execQty
	b.Stats.Executed += uint64(execQty)
	b.Stats.Updates++
	if o.Remaining == 0 {
		b.removeOrder(ref, entry, o)
	}
	return nil
}

// OrderCancel reduces ref's remaining quantity. Identical removal path to
// OrderExecuted once remaining hits zero; distinguished only for the
// OverCancel error kind and the Canceled counter.
func (b *Book) OrderCancel(ref uint64, cancelQty uint32, offset int64) error {
	entry, ok := b.index[ref]
	if !ok {
		return nil
	}
	o := b.findResting(ref, entry)
	if cancelQty > o.Remaining {
		return &errs.OverCancel{Offset: offset, Ref: ref, Remaining: o.Remaining, CancelQty: cancelQty}
	}
	o.level.TotalQty -= cancelQty
	o.Remaining -= cancelQty
	b.Stats.Canceled += uint64(cancelQty)
	b.Stats.Updates++
	if o.Remaining == 0 {
		b.removeOrder(ref, entry, o)
	}
	return nil
}

// OrderDelete removes ref entirely regardless of remaining quantity.
// Absent refs are silently discarded (scenario 6).
func (b *Book) OrderDelete(ref uint64, offset int64) error {
	entry, ok := b.index[ref]
	if !ok {
		return nil
	}
	o := b.findResting(ref, entry)
	b.Stats.Deleted += uint64(o.Remaining)
	b.removeOrder(ref, entry, o)
	b.Stats.Updates++
	return nil
}

// OrderReplace is an atomic delete-then-add: oldRef is removed (discarded
// silently if absent, per spec.md §4.5, and newRef must then NOT be
// inserted) and newRef is inserted at newPrice/newQty on the side inherited
// from the original order.
func (b *Book) OrderReplace(oldRef, newRef uint64, newQty, newPrice uint32, offset int64) error {
	entry, ok := b.index[oldRef]
	if !ok {
		return nil
	}
	if _, exists := b.index[newRef]; exists {
		return &errs.DuplicateOrderRef{Offset: offset, Ref: newRef}
	}
	o := b.findResting(oldRef, entry)
	b.Stats.Deleted += uint64(o.Remaining)
	b.removeOrder(oldRef, entry, o)

	return b.AddOrder(newRef, entry.side, newQty, newPrice, offset)
}
