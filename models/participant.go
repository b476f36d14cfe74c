package models

import (
	"time"

	"course-dashboard/internal/ref"
)

type Participant struct {
	ID        ref.ID     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}
