package enum

// ── Bill state machine ──

const (
	PaymentStatusDue  = "Due"
	PaymentStatusPaid = "Paid"
)

// ── Payment capture (labels match the persisted record format) ──

const (
	PaymentModeCash = "Cash"
	PaymentModeUPI  = "UPI"
)
