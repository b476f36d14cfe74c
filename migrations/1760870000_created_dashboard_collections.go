package migrations

import (
	"fmt"

	"course-dashboard/internal/datasource"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		lecturers := datasource.LecturersCollection()
		participants := datasource.ParticipantsCollection()
		rooms := datasource.RoomsCollection()
		courses := datasource.CoursesCollection(lecturers.Id, rooms.Id)
		registrations := datasource.RegistrationsCollection(participants.Id, courses.Id)

		// relation targets first
		for _, c := range []*core.Collection{lecturers, participants, rooms, courses, registrations} {
			if err := app.Save(c); err != nil {
				return fmt.Errorf("create %s: %w", c.Name, err)
			}
		}
		return nil
	}, func(app core.App) error {
		for _, name := range []string{
			datasource.CollectionRegistrations,
			datasource.CollectionCourses,
			datasource.CollectionRooms,
			datasource.CollectionParticipants,
			datasource.CollectionLecturers,
		} {
			c, err := app.FindCollectionByNameOrId(name)
			if err != nil {
				continue
			}
			if err := app.Delete(c); err != nil {
				return fmt.Errorf("delete %s: %w", name, err)
			}
		}
		return nil
	})
}
