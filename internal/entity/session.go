package entity

import "time"

// SessionSnapshot is the persisted form of a processing session.
type SessionSnapshot struct {
	Name      string             `json:"name"`
	Cursor    int                `json:"cursor"`
	Results   []ExtractionResult `json:"results"`
	UpdatedAt time.Time          `json:"updated_at"`
}
