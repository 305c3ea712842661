package domain

// OrderStatus is one step of the fulfilment sequence. Orders are created as
// PENDING and only ever move forward, except for cancellation.
type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// CanTransition reports whether moving to next is allowed. Forward moves go
// one step at a time; cancellation is allowed from any state that has not
// already been delivered or cancelled.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if !next.Valid() || s == next {
		return false
	}
	if next == OrderCancelled {
		return !s.Terminal()
	}
	switch s {
	case OrderPending:
		return next == OrderProcessing
	case OrderProcessing:
		return next == OrderShipped
	case OrderShipped:
		return next == OrderDelivered
	}
	return false
}
