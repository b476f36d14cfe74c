// Package datasource fetches the five dashboard collections from the managed
// data API, either from the PocketBase instance hosting the dashboard or from
// a remote PocketBase-compatible REST endpoint.
package datasource

import (
	"context"
	"fmt"
	"time"

	"course-dashboard/internal/ref"
	"course-dashboard/models"

	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"
)

const (
	CollectionLecturers     = "lecturers"
	CollectionParticipants  = "participants"
	CollectionRooms         = "rooms"
	CollectionCourses       = "courses"
	CollectionRegistrations = "registrations"
)

// DataService is the read-only collection-fetch capability the dashboard
// consumes. Each call returns the whole collection.
type DataService interface {
	ListLecturers(ctx context.Context) ([]models.Lecturer, error)
	ListParticipants(ctx context.Context) ([]models.Participant, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListCourses(ctx context.Context) ([]models.Course, error)
	ListRegistrations(ctx context.Context) ([]models.Registration, error)
}

// Fields is the accessor set shared by PocketBase records and decoded API
// items.
type Fields interface {
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetDateTime(key string) types.DateTime
}

type source interface {
	records(ctx context.Context, collection string) ([]Fields, error)
}

// Service maps raw collection items to models.
type Service struct {
	src source
}

func (s *Service) ListLecturers(ctx context.Context) ([]models.Lecturer, error) {
	return list(ctx, s.src, CollectionLecturers, LecturerFrom)
}

func (s *Service) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	return list(ctx, s.src, CollectionParticipants, ParticipantFrom)
}

func (s *Service) ListRooms(ctx context.Context) ([]models.Room, error) {
	return list(ctx, s.src, CollectionRooms, RoomFrom)
}

func (s *Service) ListCourses(ctx context.Context) ([]models.Course, error) {
	return list(ctx, s.src, CollectionCourses, CourseFrom)
}

func (s *Service) ListRegistrations(ctx context.Context) ([]models.Registration, error) {
	return list(ctx, s.src, CollectionRegistrations, RegistrationFrom)
}

func list[T any](ctx context.Context, src source, collection string, from func(Fields) T) ([]T, error) {
	items, err := src.records(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("datasource: list %s: %w", collection, err)
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, from(item))
	}
	return out, nil
}

func LecturerFrom(f Fields) models.Lecturer {
	return models.Lecturer{
		ID:          ref.Extract(f.GetString("id")),
		Name:        f.GetString("name"),
		Email:       f.GetString("email"),
		Phone:       f.GetString("phone"),
		SubjectArea: f.GetString("subject_area"),
	}
}

func ParticipantFrom(f Fields) models.Participant {
	return models.Participant{
		ID:        ref.Extract(f.GetString("id")),
		Name:      f.GetString("name"),
		Email:     f.GetString("email"),
		Phone:     f.GetString("phone"),
		BirthDate: optionalTime(f.GetDateTime("birth_date")),
	}
}

func RoomFrom(f Fields) models.Room {
	return models.Room{
		ID:       ref.Extract(f.GetString("id")),
		Name:     f.GetString("name"),
		Building: f.GetString("building"),
		Capacity: max(f.GetInt("capacity"), 0),
	}
}

func CourseFrom(f Fields) models.Course {
	return models.Course{
		ID:              ref.Extract(f.GetString("id")),
		Title:           f.GetString("title"),
		Description:     f.GetString("description"),
		Start:           optionalTime(f.GetDateTime("start_date")),
		End:             optionalTime(f.GetDateTime("end_date")),
		MaxParticipants: max(f.GetInt("max_participants"), 0),
		Price:           decimal.NewFromFloat(f.GetFloat("price")),
		Lecturer:        ref.Extract(f.GetString("lecturer")),
		Room:            ref.Extract(f.GetString("room")),
		Status:          models.ParseCourseStatus(f.GetString("status")),
	}
}

func RegistrationFrom(f Fields) models.Registration {
	return models.Registration{
		ID:           ref.Extract(f.GetString("id")),
		Participant:  ref.Extract(f.GetString("participant")),
		Course:       ref.Extract(f.GetString("course")),
		RegisteredAt: optionalTime(f.GetDateTime("registration_date")),
		Paid:         f.GetBool("paid"),
	}
}

func optionalTime(dt types.DateTime) *time.Time {
	if dt.IsZero() {
		return nil
	}
	t := dt.Time()
	return &t
}
