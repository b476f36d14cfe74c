package models

import (
	"strings"
	"time"

	"course-dashboard/internal/ref"

	"github.com/shopspring/decimal"
)

// CourseStatus holds the wire value used by the data API.
type CourseStatus string

const (
	StatusPlanned   CourseStatus = "geplant"
	StatusActive    CourseStatus = "aktiv"
	StatusCompleted CourseStatus = "abgeschlossen"
	StatusCancelled CourseStatus = "abgesagt"
)

// CourseStatuses lists the status buckets in display order.
var CourseStatuses = []CourseStatus{
	StatusPlanned,
	StatusActive,
	StatusCompleted,
	StatusCancelled,
}

var statusAliases = map[string]CourseStatus{
	"geplant":       StatusPlanned,
	"planned":       StatusPlanned,
	"aktiv":         StatusActive,
	"active":        StatusActive,
	"abgeschlossen": StatusCompleted,
	"completed":     StatusCompleted,
	"abgesagt":      StatusCancelled,
	"cancelled":     StatusCancelled,
	"canceled":      StatusCancelled,
}

var statusLabels = map[CourseStatus]string{
	StatusPlanned:   "Geplant",
	StatusActive:    "Aktiv",
	StatusCompleted: "Abgeschlossen",
	StatusCancelled: "Abgesagt",
}

var statusColors = map[CourseStatus]string{
	StatusPlanned:   "#3b82f6",
	StatusActive:    "#22c55e",
	StatusCompleted: "#6b7280",
	StatusCancelled: "#ef4444",
}

// ParseCourseStatus accepts the wire values and their English names.
// Anything else yields the empty status.
func ParseCourseStatus(s string) CourseStatus {
	return statusAliases[strings.ToLower(strings.TrimSpace(s))]
}

func (s CourseStatus) Label() string {
	return statusLabels[s]
}

func (s CourseStatus) Color() string {
	return statusColors[s]
}

type Course struct {
	ID              ref.ID          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Start           *time.Time      `json:"start,omitempty"`
	End             *time.Time      `json:"end,omitempty"`
	MaxParticipants int             `json:"max_participants"`
	Price           decimal.Decimal `json:"price"`
	Lecturer        ref.ID          `json:"lecturer,omitempty"`
	Room            ref.ID          `json:"room,omitempty"`
	Status          CourseStatus    `json:"status"`
}

// DisplayName is the title, or the id for untitled courses.
func (c Course) DisplayName() string {
	if c.Title != "" {
		return c.Title
	}
	return c.ID.String()
}

// ActiveAt reports whether the course started strictly before now and either
// has no end or ends strictly after now.
func (c Course) ActiveAt(now time.Time) bool {
	if c.Start == nil || !c.Start.Before(now) {
		return false
	}
	return c.End == nil || c.End.After(now)
}

func (c Course) UpcomingAt(now time.Time) bool {
	return c.Start != nil && c.Start.After(now)
}
