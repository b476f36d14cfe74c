package models

import "course-dashboard/internal/ref"

type Room struct {
	ID       ref.ID `json:"id"`
	Name     string `json:"name"`
	Building string `json:"building"`
	Capacity int    `json:"capacity"` // >= 0
}
