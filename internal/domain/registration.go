package domain

import "time"

type EmailStatus string

const (
	EmailStatusActive       EmailStatus = "active"
	EmailStatusBounced      EmailStatus = "bounced"
	EmailStatusUnsubscribed EmailStatus = "unsubscribed"
)

type PaymentStatus string

const (
	// PaymentStatusFree is the only payment status issued today; paid
	// registrations are deferred until payment processing lands.
	PaymentStatusFree PaymentStatus = "free"
)

// Attributes holds organizer-defined custom fields for a registration.
// Stored as JSONB; keys are free-form.
type Attributes map[string]string

// Registration is one issued unit of a ticket type's inventory. It is
// immutable after creation except for the status fields, and hard-deleted
// on cancellation.
type Registration struct {
	ID            string
	EventID       string
	TicketTypeID  string
	Email         string // always lowercase
	Name          string
	Code          string
	Attributes    Attributes
	EmailStatus   EmailStatus
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
}

// ValidEmailStatus reports whether s is one of the known delivery statuses.
func ValidEmailStatus(s string) bool {
	switch EmailStatus(s) {
	case EmailStatusActive, EmailStatusBounced, EmailStatusUnsubscribed:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is an accepted payment status value.
func ValidPaymentStatus(s string) bool {
	return PaymentStatus(s) == PaymentStatusFree
}
