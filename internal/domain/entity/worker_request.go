package entity

import "time"

// WorkerRequest is a worker's expense claim moving through the approval
// chain (pending -> approved -> paid -> received). Status changes go
// through the expense workflow; direct overwrites are not allowed.
type WorkerRequest struct {
	ID          string `json:"id"`
	WorkerID    string `json:"worker_id"`
	Region      Region `json:"region"`
	Title       string `json:"title"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`

	// Supporting images (stored file names)
	WorkerImages  []string `json:"worker_images,omitempty"`
	CashierImages []string `json:"cashier_images,omitempty"`

	// Amount-adjustment side branches; set but never acted on automatically
	ExtraRequested  int64 `json:"extra_requested,omitempty"`
	ReturnRequested int64 `json:"return_requested,omitempty"`

	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ApprovedBy      string     `json:"approved_by,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	PaidBy          string     `json:"paid_by,omitempty"`
	PaymentNote     string     `json:"payment_note,omitempty"`
	ReceivedAt      *time.Time `json:"received_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
