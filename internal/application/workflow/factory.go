// Package workflow wires the generic state machine to the two approval
// workflows of the system: registrant registrations and worker expense
// requests.
package workflow

import (
	"fmt"

	domainwf "github.com/spicon/registration/internal/domain/workflow"
)

// BuildRegistrationMachine creates a machine for the registration approval
// workflow. Approval and rejection are both terminal; nothing leaves
// approved or rejected in-system.
func BuildRegistrationMachine(status string) (domainwf.Machine, error) {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected)

	// approved carries no outgoing transitions: a re-approval attempt must
	// fail rather than re-execute allocation

	return build(builder, status)
}

// BuildExpenseMachine creates a machine for the worker expense workflow.
// Happy path: pending -> approved -> paid -> received. The extra/return
// side branches are recorded but have no automated follow-up transitions.
func BuildExpenseMachine(status string) (domainwf.Machine, error) {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StatePending).
		Permit(domainwf.TriggerApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerRequestExtra, domainwf.StatePendingExtra).
		Permit(domainwf.TriggerRequestReturn, domainwf.StatePendingReturn)

	builder.Configure(domainwf.StateApproved).
		Permit(domainwf.TriggerPay, domainwf.StatePaid)

	builder.Configure(domainwf.StatePaid).
		Permit(domainwf.TriggerConfirmReceive, domainwf.StateReceived)

	return build(builder, status)
}

func build(builder domainwf.Builder, status string) (domainwf.Machine, error) {
	state := domainwf.State(status)
	machine, err := builder.Build(state)
	if err != nil {
		return nil, fmt.Errorf("build machine at %q: %w", status, err)
	}
	return machine, nil
}
