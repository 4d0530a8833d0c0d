package workflow

import (
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePending, false},
		{StateApproved, false},
		{StatePaid, false},
		{StateRejected, true},
		{StateReceived, true},
		{StatePendingExtra, true},
		{StatePendingReturn, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"known state", StatePending, true},
		{"known terminal state", StateReceived, true},
		{"unknown state", State("cancelled"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func buildTestMachine(t *testing.T, initial State) Machine {
	t.Helper()

	b := NewBuilder()
	b.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)
	b.Configure(StateApproved).
		Permit(TriggerPay, StatePaid)

	m, err := b.Build(initial)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return m
}

func TestMachine_Fire(t *testing.T) {
	m := buildTestMachine(t, StatePending)

	state, err := m.Fire(TriggerApprove)
	if err != nil {
		t.Fatalf("Fire(approve) error = %v", err)
	}
	if state != StateApproved {
		t.Errorf("Fire(approve) state = %v, want %v", state, StateApproved)
	}

	state, err = m.Fire(TriggerPay)
	if err != nil {
		t.Fatalf("Fire(pay) error = %v", err)
	}
	if state != StatePaid {
		t.Errorf("Fire(pay) state = %v, want %v", state, StatePaid)
	}
}

func TestMachine_Fire_InvalidTransition(t *testing.T) {
	m := buildTestMachine(t, StatePending)

	// pay is not permitted while still pending
	state, err := m.Fire(TriggerPay)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(pay) error = %v, want ErrInvalidTransition", err)
	}
	if state != StatePending {
		t.Errorf("failed Fire must not move the machine, state = %v", state)
	}
}

func TestMachine_CanFire(t *testing.T) {
	m := buildTestMachine(t, StatePending)

	if !m.CanFire(TriggerApprove) {
		t.Error("CanFire(approve) = false, want true")
	}
	if m.CanFire(TriggerConfirmReceive) {
		t.Error("CanFire(confirm_receive) = true, want false")
	}
}

func TestMachine_PermittedTriggers(t *testing.T) {
	m := buildTestMachine(t, StatePending)

	triggers := m.PermittedTriggers()
	if len(triggers) != 2 {
		t.Fatalf("PermittedTriggers() = %v, want 2 triggers", triggers)
	}
	// sorted output
	if triggers[0] != TriggerApprove || triggers[1] != TriggerReject {
		t.Errorf("PermittedTriggers() = %v, want [approve reject]", triggers)
	}
}

func TestMachine_RejectedIsDeadEnd(t *testing.T) {
	m := buildTestMachine(t, StateRejected)

	for _, trigger := range []Trigger{TriggerApprove, TriggerReject, TriggerPay} {
		if m.CanFire(trigger) {
			t.Errorf("CanFire(%s) from rejected = true, want false", trigger)
		}
	}
}

func TestBuild_InvalidInitialState(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Build(State("nonsense")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Build() error = %v, want ErrInvalidState", err)
	}
}

func TestMachine_IndependentOfBuilder(t *testing.T) {
	b := NewBuilder()
	b.Configure(StatePending).Permit(TriggerApprove, StateApproved)

	m, err := b.Build(StatePending)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Later builder configuration must not leak into the built machine
	b.Configure(StatePending).Permit(TriggerReject, StateRejected)

	if m.CanFire(TriggerReject) {
		t.Error("machine observed configuration added after Build")
	}
}
