package datasource

import (
	"course-dashboard/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

func LecturersCollection() *core.Collection {
	c := core.NewBaseCollection(CollectionLecturers)
	c.Fields.Add(
		&core.TextField{Name: "name", Required: true, Max: 200},
		&core.EmailField{Name: "email"},
		&core.TextField{Name: "phone", Max: 50},
		&core.TextField{Name: "subject_area", Max: 200},
	)
	return c
}

func ParticipantsCollection() *core.Collection {
	c := core.NewBaseCollection(CollectionParticipants)
	c.Fields.Add(
		&core.TextField{Name: "name", Required: true, Max: 200},
		&core.EmailField{Name: "email"},
		&core.TextField{Name: "phone", Max: 50},
		&core.DateField{Name: "birth_date"},
	)
	return c
}

func RoomsCollection() *core.Collection {
	c := core.NewBaseCollection(CollectionRooms)
	c.Fields.Add(
		&core.TextField{Name: "name", Required: true, Max: 100},
		&core.TextField{Name: "building", Max: 100},
		&core.NumberField{Name: "capacity", OnlyInt: true, Min: types.Pointer(0.0)},
	)
	return c
}

func CoursesCollection(lecturersID, roomsID string) *core.Collection {
	statuses := make([]string, 0, len(models.CourseStatuses))
	for _, s := range models.CourseStatuses {
		statuses = append(statuses, string(s))
	}

	c := core.NewBaseCollection(CollectionCourses)
	c.Fields.Add(
		&core.TextField{Name: "title", Required: true, Max: 200},
		&core.EditorField{Name: "description"},
		&core.DateField{Name: "start_date"},
		&core.DateField{Name: "end_date"},
		&core.NumberField{Name: "max_participants", OnlyInt: true, Min: types.Pointer(0.0)},
		&core.NumberField{Name: "price", Min: types.Pointer(0.0)},
		&core.RelationField{Name: "lecturer", CollectionId: lecturersID, MaxSelect: 1},
		&core.RelationField{Name: "room", CollectionId: roomsID, MaxSelect: 1},
		&core.SelectField{Name: "status", Values: statuses, MaxSelect: 1},
	)
	return c
}

func RegistrationsCollection(participantsID, coursesID string) *core.Collection {
	c := core.NewBaseCollection(CollectionRegistrations)
	c.Fields.Add(
		&core.RelationField{Name: "participant", CollectionId: participantsID, MaxSelect: 1},
		&core.RelationField{Name: "course", CollectionId: coursesID, MaxSelect: 1},
		&core.DateField{Name: "registration_date"},
		&core.BoolField{Name: "paid"},
	)
	c.AddIndex("idx_registrations_course", false, "course", "")
	return c
}
