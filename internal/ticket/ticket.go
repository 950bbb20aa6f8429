// Package ticket is the help-desk collaborator: open tickets raised from the
// verification page, resolved by the admin, pruned once resolved long enough.
package ticket

import "time"

const (
	StatusOpen     = "Open"
	StatusResolved = "Resolved"
)

// Ticket is a help-desk entry.
type Ticket struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	USN        string     `json:"usn"`
	Email      string     `json:"email"`
	Issue      string     `json:"issue"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
