package auth

import "time"

// Consultant is a staff account from consultores, authorized to edit quotes.
type Consultant struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
