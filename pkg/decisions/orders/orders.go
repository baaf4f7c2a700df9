// Package orders defines the order-processing lifecycle as a guarded state
// machine.
//
// Payment outcomes branch on a guard context rather than on distinct events:
// a single PaymentProcessed event moves the order to Processing, Backordered,
// or back to PendingPayment depending on whether the charge succeeded and
// stock is on hand. Completed and Cancelled are terminal; once an order
// reaches either, every further event is a no-op.
package orders

import "mercator-hq/tabula/pkg/machine"

// States of the order lifecycle.
const (
	Draft          machine.State = "Draft"
	PendingPayment machine.State = "PendingPayment"
	Processing     machine.State = "Processing"
	Backordered    machine.State = "Backordered"
	Shipped        machine.State = "Shipped"
	Completed      machine.State = "Completed"
	Cancelled      machine.State = "Cancelled"
)

// Events that drive the lifecycle.
const (
	Submit            machine.Event = "Submit"
	PaymentProcessed  machine.Event = "PaymentProcessed"
	InventoryReceived machine.Event = "InventoryReceived"
	Ship              machine.Event = "Ship"
	Deliver           machine.Event = "Deliver"
	Cancel            machine.Event = "Cancel"
)

// Effects emitted by transitions. They are commands for the caller to carry
// out; the machine itself performs none of them.
const (
	ValidateOrder    machine.Effect = "validateOrder"
	SendEmail        machine.Effect = "sendEmail"
	ReserveInventory machine.Effect = "reserveInventory"
	ReleaseInventory machine.Effect = "releaseInventory"
	NotifyCustomer   machine.Effect = "notifyCustomer"
	CancelOrder      machine.Effect = "cancelOrder"
)

// GuardContext carries the external facts payment transitions branch on.
type GuardContext struct {
	PaymentSucceeded   bool
	InventoryAvailable bool
}

// New builds the order-processing machine definition.
func New() (*machine.Definition[GuardContext], error) {
	paidAndStocked := func(ctx GuardContext) bool {
		return ctx.PaymentSucceeded && ctx.InventoryAvailable
	}
	paidNotStocked := func(ctx GuardContext) bool {
		return ctx.PaymentSucceeded && !ctx.InventoryAvailable
	}
	notPaid := func(ctx GuardContext) bool { return !ctx.PaymentSucceeded }
	stocked := func(ctx GuardContext) bool { return ctx.InventoryAvailable }

	transitions := []machine.Transition[GuardContext]{
		{
			From:        Draft,
			On:          Submit,
			To:          PendingPayment,
			Effects:     []machine.Effect{ValidateOrder, SendEmail},
			Description: "Submission always succeeds; payment is settled later.",
		},
		{
			From:    PendingPayment,
			On:      PaymentProcessed,
			To:      Processing,
			Guard:   paidAndStocked,
			Effects: []machine.Effect{ReserveInventory},
		},
		{
			From:        PendingPayment,
			On:          PaymentProcessed,
			To:          Backordered,
			Guard:       paidNotStocked,
			Effects:     []machine.Effect{NotifyCustomer},
			Description: "Paid but out of stock; hold until inventory arrives.",
		},
		{
			From:        PendingPayment,
			On:          PaymentProcessed,
			To:          PendingPayment,
			Guard:       notPaid,
			Effects:     []machine.Effect{NotifyCustomer},
			Description: "Declined charge; the customer may retry.",
		},
		{
			From:    Backordered,
			On:      InventoryReceived,
			To:      Processing,
			Guard:   stocked,
			Effects: []machine.Effect{ReserveInventory},
		},
		{
			From:    Processing,
			On:      Ship,
			To:      Shipped,
			Effects: []machine.Effect{NotifyCustomer},
		},
		{
			From:    Shipped,
			On:      Deliver,
			To:      Completed,
			Effects: []machine.Effect{SendEmail},
		},
	}

	// Cancellation is available from every non-terminal state and always
	// carries the same cleanup effects.
	for _, from := range []machine.State{Draft, PendingPayment, Processing, Backordered, Shipped} {
		transitions = append(transitions, machine.Transition[GuardContext]{
			From:    from,
			On:      Cancel,
			To:      Cancelled,
			Effects: []machine.Effect{CancelOrder, ReleaseInventory},
		})
	}

	return machine.New(machine.Spec[GuardContext]{
		Name: "order-processing",
		States: []machine.State{
			Draft, PendingPayment, Processing, Backordered, Shipped, Completed, Cancelled,
		},
		Initial:     Draft,
		Terminal:    []machine.State{Completed, Cancelled},
		Transitions: transitions,
	})
}

// MustNew builds the definition and panics on error. The transition set is
// fixed at compile time, so failure here is a programming error.
func MustNew() *machine.Definition[GuardContext] {
	def, err := New()
	if err != nil {
		panic(err)
	}
	return def
}
