package book

// PriceLevel aggregates every resting order at one price on one side,
// keeping arrival-ordered FIFO queue. TotalQty and OrderCount are derived
// invariants (I1): Enqueue and Remove keep both in lockstep with the queue
// contents, and Book's partial execute/cancel paths subtract from TotalQty
// by the same amount they subtract from the order's Remaining.
type PriceLevel struct {
	Price uint32

	head *Order
	tail *Order

	TotalQty   uint32
	OrderCount int
}

// Enqueue appends o to the tail of the level's arrival-order queue.
func (p *PriceLevel) Enqueue(o *Order) {
	o.level = p
	if p.tail == nil {
		p.head, p.tail = o, o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.TotalQty += o.Remaining
	p.OrderCount++
}

// Remove splices o out of the queue in O(1), using its intrusive links.
func (p *PriceLevel) Remove(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}
	p.TotalQty -= o.Remaining
	p.OrderCount--
	o.next, o.prev, o.level = nil, nil, nil
}

// Empty reports whether the level has no resting orders left.
func (p *PriceLevel) Empty() bool { return p.head == nil }

// Head returns the oldest resting order, or nil if the level is empty.
func (p *PriceLevel) Head() *Order { return p.head }
