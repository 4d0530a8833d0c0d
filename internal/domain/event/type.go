package event

// Type identifies the type of domain event
type Type string

const (
	TypeRegistrationApproved Type = "registration.approved"
	TypeRegistrationRejected Type = "registration.rejected"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeRegistrationApproved, TypeRegistrationRejected:
		return true
	default:
		return false
	}
}
