package workflow

import (
	"fmt"
	"sort"
)

// Machine validates status transitions against an explicit transition
// table. A status field is never overwritten without firing the matching
// trigger through a machine first.
type Machine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the target state if the
	// transition table allows it
	Fire(trigger Trigger) (State, error)

	// PermittedTriggers returns the triggers that can fire in the current state
	PermittedTriggers() []Trigger
}

// Builder assembles the transition table for a machine
type Builder interface {
	// Configure returns the configuration for the given state
	Configure(state State) StateConfiguration

	// Build creates a machine positioned at the given initial state
	Build(initialState State) (Machine, error)
}

// StateConfiguration configures outgoing transitions for one state
type StateConfiguration interface {
	// Permit allows the trigger to transition to the target state
	Permit(trigger Trigger, toState State) StateConfiguration
}

type builder struct {
	table map[State]map[Trigger]State
}

type stateConfig struct {
	builder *builder
	from    State
}

type machine struct {
	current State
	table   map[State]map[Trigger]State
}

// NewBuilder creates an empty transition-table builder
func NewBuilder() Builder {
	return &builder{table: make(map[State]map[Trigger]State)}
}

func (b *builder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("workflow: configuring unknown state %q", state))
	}
	if _, ok := b.table[state]; !ok {
		b.table[state] = make(map[Trigger]State)
	}
	return &stateConfig{builder: b, from: state}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("workflow: transition to unknown state %q", toState))
	}
	if c.from.IsTerminal() {
		panic(fmt.Sprintf("workflow: terminal state %q cannot have outgoing transitions", c.from))
	}
	c.builder.table[c.from][trigger] = toState
	return c
}

func (b *builder) Build(initialState State) (Machine, error) {
	if !initialState.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, initialState)
	}

	// Copy the table so machines stay independent of later builder use
	table := make(map[State]map[Trigger]State, len(b.table))
	for state, transitions := range b.table {
		row := make(map[Trigger]State, len(transitions))
		for trigger, to := range transitions {
			row[trigger] = to
		}
		table[state] = row
	}

	return &machine{current: initialState, table: table}, nil
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	_, ok := m.table[m.current][trigger]
	return ok
}

func (m *machine) Fire(trigger Trigger) (State, error) {
	to, ok := m.table[m.current][trigger]
	if !ok {
		return m.current, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = to
	return to, nil
}

func (m *machine) PermittedTriggers() []Trigger {
	transitions := m.table[m.current]
	triggers := make([]Trigger, 0, len(transitions))
	for trigger := range transitions {
		triggers = append(triggers, trigger)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
