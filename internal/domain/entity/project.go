package entity

import "time"

// Project is a per-user catalog entry; Code is unique per user.
type Project struct {
	ID          string
	UserID      string
	Code        string
	Name        string
	Description string
	Priority    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
