package stats

import (
	"course-dashboard/internal/ref"
	"course-dashboard/models"
)

// Placeholder is shown for absent or unresolved references.
const Placeholder = "Unbekannt"

// Index resolves references against one snapshot.
type Index struct {
	lecturers    map[ref.ID]models.Lecturer
	participants map[ref.ID]models.Participant
	rooms        map[ref.ID]models.Room
	courses      map[ref.ID]models.Course
}

func NewIndex(snap models.Snapshot) *Index {
	ix := &Index{
		lecturers:    make(map[ref.ID]models.Lecturer, len(snap.Lecturers)),
		participants: make(map[ref.ID]models.Participant, len(snap.Participants)),
		rooms:        make(map[ref.ID]models.Room, len(snap.Rooms)),
		courses:      make(map[ref.ID]models.Course, len(snap.Courses)),
	}
	for _, l := range snap.Lecturers {
		ix.lecturers[l.ID.Canonical()] = l
	}
	for _, p := range snap.Participants {
		ix.participants[p.ID.Canonical()] = p
	}
	for _, r := range snap.Rooms {
		ix.rooms[r.ID.Canonical()] = r
	}
	for _, c := range snap.Courses {
		ix.courses[c.ID.Canonical()] = c
	}
	return ix
}

// ParticipantName extracts the identity from reference and returns the
// participant's name.
func (ix *Index) ParticipantName(reference string) string {
	return ix.participantName(ref.Extract(reference))
}

func (ix *Index) CourseTitle(reference string) string {
	return ix.courseTitle(ref.Extract(reference))
}

func (ix *Index) LecturerName(reference string) string {
	return ix.lecturerName(ref.Extract(reference))
}

func (ix *Index) RoomName(reference string) string {
	return ix.roomName(ref.Extract(reference))
}

// Course looks up a course by identity.
func (ix *Index) Course(id ref.ID) (models.Course, bool) {
	if id.IsZero() {
		return models.Course{}, false
	}
	c, ok := ix.courses[id.Canonical()]
	return c, ok
}

func (ix *Index) participantName(id ref.ID) string {
	if p, ok := ix.participants[id.Canonical()]; ok && !id.IsZero() && p.Name != "" {
		return p.Name
	}
	return Placeholder
}

func (ix *Index) courseTitle(id ref.ID) string {
	if c, ok := ix.Course(id); ok {
		return c.DisplayName()
	}
	return Placeholder
}

func (ix *Index) lecturerName(id ref.ID) string {
	if l, ok := ix.lecturers[id.Canonical()]; ok && !id.IsZero() && l.Name != "" {
		return l.Name
	}
	return Placeholder
}

func (ix *Index) roomName(id ref.ID) string {
	if r, ok := ix.rooms[id.Canonical()]; ok && !id.IsZero() && r.Name != "" {
		return r.Name
	}
	return Placeholder
}
