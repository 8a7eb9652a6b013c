package orderbook

// PriceLevel holds the resting orders at one price in strict arrival
// order. The queue is an intrusive doubly linked list over Order.
type PriceLevel struct {
	Price int64
	head  *Order
	tail  *Order
	count int
}

func (p *PriceLevel) Enqueue(o *Order) {
	if p.head == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	p.count++
}

// Front returns the order with time priority at this level.
func (p *PriceLevel) Front() *Order { return p.head }

func (p *PriceLevel) PopFront() *Order {
	o := p.head
	if o == nil {
		return nil
	}
	p.head = o.next
	if p.head != nil {
		p.head.prev = nil
	} else {
		p.tail = nil
	}
	o.next = nil
	o.prev = nil
	p.count--
	return o
}

// Requeue moves the front order to the back of the queue. An iceberg
// reload forfeits time priority, so the reloaded order waits behind every
// order that arrived before its slice was consumed.
func (p *PriceLevel) Requeue(o *Order) {
	if p.head != o {
		panic("orderbook: requeue of non-front order")
	}
	p.PopFront()
	p.Enqueue(o)
}

func (p *PriceLevel) Empty() bool { return p.head == nil }

func (p *PriceLevel) Len() int { return p.count }
