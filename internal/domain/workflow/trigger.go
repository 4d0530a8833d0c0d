package workflow

// Trigger is an action that may cause a state transition
type Trigger string

const (
	TriggerApprove        Trigger = "approve"
	TriggerReject         Trigger = "reject"
	TriggerPay            Trigger = "pay"
	TriggerConfirmReceive Trigger = "confirm_receive"
	TriggerRequestExtra   Trigger = "request_extra"
	TriggerRequestReturn  Trigger = "request_return"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
