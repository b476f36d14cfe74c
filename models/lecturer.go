package models

import "course-dashboard/internal/ref"

type Lecturer struct {
	ID          ref.ID `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SubjectArea string `json:"subject_area"`
}
