package domain

import "time"

// Comment is a single append-only entry in a ticket's thread.
// UserName and UserRole are snapshots of the author at write time.
type Comment struct {
	ID        string
	TicketID  string
	UserID    string
	UserName  string
	UserRole  UserRole
	Content   string
	CreatedAt time.Time
}
