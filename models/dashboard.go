package models

import (
	"time"

	"course-dashboard/internal/ref"

	"github.com/shopspring/decimal"
)

// Snapshot is one load cycle's worth of collections.
type Snapshot struct {
	Lecturers     []Lecturer
	Participants  []Participant
	Rooms         []Room
	Courses       []Course
	Registrations []Registration
}

type Totals struct {
	Lecturers     int `json:"lecturers"`
	Participants  int `json:"participants"`
	Rooms         int `json:"rooms"`
	Courses       int `json:"courses"`
	Registrations int `json:"registrations"`
	RoomCapacity  int `json:"room_capacity"`
}

type CourseCount struct {
	CourseID ref.ID `json:"course_id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

type StatusBucket struct {
	Status CourseStatus `json:"status"`
	Label  string       `json:"label"`
	Color  string       `json:"color"`
	Count  int          `json:"count"`
}

type RecentRegistration struct {
	ID              ref.ID     `json:"id"`
	ParticipantName string     `json:"participant_name"`
	CourseTitle     string     `json:"course_title"`
	RegisteredAt    *time.Time `json:"registered_at,omitempty"`
	Paid            bool       `json:"paid"`
}

type CourseOccupancy struct {
	CourseID        ref.ID  `json:"course_id"`
	Title           string  `json:"title"`
	LecturerName    string  `json:"lecturer_name"`
	RoomName        string  `json:"room_name"`
	Registrations   int     `json:"registrations"`
	MaxParticipants int     `json:"max_participants"`
	Occupancy       float64 `json:"occupancy"` // 0..1, may exceed 1 when overbooked
}

type Stats struct {
	Totals              Totals               `json:"totals"`
	ActiveCourses       []Course             `json:"active_courses"`
	UpcomingCourses     []Course             `json:"upcoming_courses"`
	PaidCount           int                  `json:"paid_count"`
	UnpaidCount         int                  `json:"unpaid_count"`
	CourseRegistrations []CourseCount        `json:"course_registrations"`
	StatusDistribution  []StatusBucket       `json:"status_distribution"`
	Revenue             decimal.Decimal      `json:"revenue"`
	RecentRegistrations []RecentRegistration `json:"recent_registrations"`
	Occupancy           []CourseOccupancy    `json:"occupancy"`
}

// DashboardState is what the presentation layer renders. A failed load leaves
// Loaded set with empty Stats.
type DashboardState struct {
	CycleID  string     `json:"cycle_id,omitempty"`
	Loading  bool       `json:"loading"`
	Loaded   bool       `json:"loaded"`
	Failed   bool       `json:"failed"`
	Error    string     `json:"error,omitempty"`
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	Stats    Stats      `json:"stats"`
}
