package models

import "time"

// Todo statuses
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Todo represents a note owned by a single user
type Todo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Note      string    `json:"note"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidStatus reports whether s is one of the known todo statuses
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	}
	return false
}
