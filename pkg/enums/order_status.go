package enums

// OrderStatus maps to the order_status enum in Postgres.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusCompleted,
	OrderStatusRejected,
	OrderStatusCanceled,
}

// NonTerminalOrderStatuses are the statuses that still hold a slot on a listing.
var NonTerminalOrderStatuses = []OrderStatus{OrderStatusPending, OrderStatusConfirmed}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusRejected, OrderStatusCanceled},
	OrderStatusConfirmed: {OrderStatusCompleted, OrderStatusCanceled},
}

func (s OrderStatus) IsValid() bool {
	return isOneOf(validOrderStatuses, s)
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s.IsValid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether next is reachable from s in one step.
// CONFIRMED -> CANCELED is only issued by the ban cascade; callers enforce that.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return isOneOf(orderTransitions[s], next)
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parseOneOf(validOrderStatuses, value, "order status")
}
