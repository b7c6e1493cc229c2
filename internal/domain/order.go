package domain

// OrderStatus enumerates lifecycle states for orders.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
)

// Order holds the subset of the server-side order needed to validate a
// transition locally. The server remains authoritative for all fields.
type Order struct {
	ID              string
	Status          OrderStatus
	FinalAmount     float64
	PaymentStatus   string
	AssignedStaffID *string
	Notes           *string
	StaffNotes      *string
}

// TransitionRule describes one legal edge of the order workflow.
type TransitionRule struct {
	Roles          []Role
	RequiresReason bool
}

type transitionKey struct {
	from OrderStatus
	to   OrderStatus
}

var adminStaff = []Role{RoleAdmin, RoleStaff}

// transitionRules is the authoritative transition table. UI-level filtering and
// route guards must project from this table, never duplicate it.
var transitionRules = map[transitionKey]TransitionRule{
	{OrderStatusPending, OrderStatusConfirmed}:    {Roles: adminStaff},
	{OrderStatusConfirmed, OrderStatusProcessing}: {Roles: adminStaff},
	{OrderStatusProcessing, OrderStatusShipped}:   {Roles: adminStaff},
	{OrderStatusShipped, OrderStatusDelivered}:    {Roles: adminStaff},
	{OrderStatusDelivered, OrderStatusReturned}:   {Roles: []Role{RoleAdmin}},

	{OrderStatusPending, OrderStatusCancelled}:    {Roles: adminStaff, RequiresReason: true},
	{OrderStatusConfirmed, OrderStatusCancelled}:  {Roles: adminStaff, RequiresReason: true},
	{OrderStatusProcessing, OrderStatusCancelled}: {Roles: adminStaff, RequiresReason: true},
	{OrderStatusShipped, OrderStatusCancelled}:    {Roles: adminStaff, RequiresReason: true},
}

// statusOrder fixes a stable listing order for AllowedNext.
var statusOrder = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
}

// TransitionFor returns the rule governing from→to, if the edge is legal.
func TransitionFor(from, to OrderStatus) (TransitionRule, bool) {
	rule, ok := transitionRules[transitionKey{from, to}]
	return rule, ok
}

// AllowedNext returns every status legally reachable from the given one.
func AllowedNext(from OrderStatus) []OrderStatus {
	next := make([]OrderStatus, 0, 2)
	for _, to := range statusOrder {
		if _, ok := transitionRules[transitionKey{from, to}]; ok {
			next = append(next, to)
		}
	}
	return next
}

// IsTerminal reports whether no transition leaves the status.
func IsTerminal(status OrderStatus) bool {
	return len(AllowedNext(status)) == 0
}
