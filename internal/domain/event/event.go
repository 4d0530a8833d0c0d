package event

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spicon/registration/internal/domain/entity"
)

// Event represents something that happened to a payment record. The
// record snapshot is the state at the time the event was raised.
type Event struct {
	ID        string
	Type      Type
	Record    *entity.PaymentRecord
	Timestamp time.Time
}

// NewRegistrationApproved raises an approval event for a record that has
// just been issued its unique id
func NewRegistrationApproved(rec *entity.PaymentRecord) *Event {
	return newEvent(TypeRegistrationApproved, rec)
}

// NewRegistrationRejected raises a rejection event
func NewRegistrationRejected(rec *entity.PaymentRecord) *Event {
	return newEvent(TypeRegistrationRejected, rec)
}

func newEvent(eventType Type, rec *entity.PaymentRecord) *Event {
	return &Event{
		ID:        generateID(),
		Type:      eventType,
		Record:    rec,
		Timestamp: time.Now(),
	}
}

// generateID creates a random hex identifier
func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("evt-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
