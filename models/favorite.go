package models

import "time"

// Favorite is an event a user saved for later.
type Favorite struct {
	ID      int64     `json:"id"`
	EventID string    `json:"event_id"`
	Date    string    `json:"date"`
	Event   string    `json:"event"`
	Genre   string    `json:"genre"`
	Venue   string    `json:"venue"`
	SavedAt time.Time `json:"saved_at"`
}
