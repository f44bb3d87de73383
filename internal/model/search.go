package model

import "time"

// Search is one stored search invocation.
type Search struct {
	ID         string       `json:"id"`
	Query      string       `json:"query"`
	Location   string       `json:"location"`
	Status     SearchStatus `json:"status"`
	LeadsFound int          `json:"leads_found"`
	Error      string       `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
