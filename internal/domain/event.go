package domain

import "time"

// Event represents a ticketed event (ticket-type based inventory).
type Event struct {
	ID        string
	Name      string
	StartsAt  time.Time
	CreatedAt time.Time
}
