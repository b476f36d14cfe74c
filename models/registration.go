package models

import (
	"time"

	"course-dashboard/internal/ref"
)

type Registration struct {
	ID           ref.ID     `json:"id"`
	Participant  ref.ID     `json:"participant"`
	Course       ref.ID     `json:"course"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
	Paid         bool       `json:"paid"`
}
