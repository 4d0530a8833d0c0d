package entity

// Payment status constants for PaymentRecord (derived by the ledger)
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
)

// Registration status constants for PaymentRecord
const (
	RegistrationPending  = "pending"
	RegistrationApproved = "approved"
	RegistrationRejected = "rejected"
)

// Status constants for WorkerRequest
const (
	RequestPending       = "pending"
	RequestApproved      = "approved"
	RequestRejected      = "rejected"
	RequestPaid          = "paid"
	RequestReceived      = "received"
	RequestPendingExtra  = "pending_extra"
	RequestPendingReturn = "pending_return"
)
