package book

import "sync"

// orderPool recycles Order structs across add/delete cycles so the hot
// path at tens of millions of messages per second doesn't hand the
// allocator a fresh struct per order.
type orderPool struct {
	p sync.Pool
}

func newOrderPool() *orderPool {
	return &orderPool{p: sync.Pool{New: func() any { return new(Order) }}}
}

func (p *orderPool) get() *Order {
	return p.p.Get().(*Order)
}

func (p *orderPool) put(o *Order) {
	o.reset()
	p.p.Put(o)
}
