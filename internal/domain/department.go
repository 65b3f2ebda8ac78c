package domain

import "time"

// Department represents a municipal service unit complaints are routed to.
type Department struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
