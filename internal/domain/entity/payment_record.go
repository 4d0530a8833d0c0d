package entity

import "time"

// Transaction is a single installment paid toward a registration fee.
// Transactions are append-only; amounts are whole currency units.
type Transaction struct {
	ID         int64     `json:"id"`
	RecordID   string    `json:"record_id"`
	Amount     int64     `json:"amount"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentRecord is one registrant's payment record. PaidAmount, Balance and
// PaymentStatus are derived from Transactions and TotalAmount and must only
// be written through the ledger package.
type PaymentRecord struct {
	ID     string `json:"id"`
	Region Region `json:"region"`

	// Registrant details
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
	District   string `json:"district,omitempty"`
	GroupType  string `json:"group_type"`
	SpouseName string `json:"spouse_name,omitempty"`
	FamilySize int    `json:"family_size,omitempty"`
	ArrivalDay string `json:"arrival_day,omitempty"`

	// Financial state
	TotalAmount   int64         `json:"total_amount"`
	PaidAmount    int64         `json:"paid_amount"`
	Balance       int64         `json:"balance"`
	PaymentStatus string        `json:"status"`
	Transactions  []Transaction `json:"transactions"`

	// Approval state
	RegistrationStatus string     `json:"registration_status"`
	UniqueID           string     `json:"unique_id,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	ApprovedBy         string     `json:"approved_by,omitempty"`
	RejectedAt         *time.Time `json:"rejected_at,omitempty"`
	RejectedBy         string     `json:"rejected_by,omitempty"`
	RejectionReason    string     `json:"rejection_reason,omitempty"`

	PaymentScreenshot string `json:"payment_screenshot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
