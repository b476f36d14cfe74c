// Package stats derives the dashboard figures from a snapshot of the five
// collections. Everything here is pure: no I/O, no errors, missing data
// degrades to zero or Placeholder.
package stats

import (
	"cmp"
	"slices"
	"time"

	"course-dashboard/internal/ref"
	"course-dashboard/models"

	"github.com/shopspring/decimal"
)

const (
	DefaultUpcomingLimit   = 5
	CompactUpcomingLimit   = 4
	DefaultTopCoursesLimit = 6
	DefaultRecentLimit     = 6
)

type Options struct {
	UpcomingLimit int
	// CompactUpcomingLimit applies to the compact upcoming list only.
	CompactUpcomingLimit int
	TopCoursesLimit      int
	RecentLimit          int
}

func DefaultOptions() Options {
	return Options{
		UpcomingLimit:        DefaultUpcomingLimit,
		CompactUpcomingLimit: CompactUpcomingLimit,
		TopCoursesLimit:      DefaultTopCoursesLimit,
		RecentLimit:          DefaultRecentLimit,
	}
}

type Aggregator struct {
	opts Options
	now  func() time.Time
}

func NewAggregator(opts Options) *Aggregator {
	return &Aggregator{opts: opts, now: time.Now}
}

// WithClock replaces the source of the current instant.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

func (a *Aggregator) Options() Options {
	return a.opts
}

func (a *Aggregator) Now() time.Time {
	return a.now()
}

// Compute derives every dashboard figure from snap at the current instant.
func (a *Aggregator) Compute(snap models.Snapshot) models.Stats {
	now := a.now()
	ix := NewIndex(snap)
	paid, unpaid := PaidCounts(snap.Registrations)

	return models.Stats{
		Totals:              ComputeTotals(snap),
		ActiveCourses:       ActiveCourses(snap.Courses, now),
		UpcomingCourses:     UpcomingCourses(snap.Courses, now, a.opts.UpcomingLimit),
		PaidCount:           paid,
		UnpaidCount:         unpaid,
		CourseRegistrations: CourseRegistrationCounts(snap.Courses, snap.Registrations, a.opts.TopCoursesLimit),
		StatusDistribution:  StatusDistribution(snap.Courses),
		Revenue:             Revenue(snap.Courses, snap.Registrations),
		RecentRegistrations: RecentRegistrations(ix, snap.Registrations, a.opts.RecentLimit),
		Occupancy:           Occupancy(ix, snap.Courses, snap.Registrations, now),
	}
}

// Empty is the "loaded, no data" figure set.
func Empty() models.Stats {
	return models.Stats{
		ActiveCourses:       []models.Course{},
		UpcomingCourses:     []models.Course{},
		CourseRegistrations: []models.CourseCount{},
		StatusDistribution:  []models.StatusBucket{},
		Revenue:             decimal.Zero,
		RecentRegistrations: []models.RecentRegistration{},
		Occupancy:           []models.CourseOccupancy{},
	}
}

func ComputeTotals(snap models.Snapshot) models.Totals {
	t := models.Totals{
		Lecturers:     len(snap.Lecturers),
		Participants:  len(snap.Participants),
		Rooms:         len(snap.Rooms),
		Courses:       len(snap.Courses),
		Registrations: len(snap.Registrations),
	}
	for _, r := range snap.Rooms {
		t.RoomCapacity += max(r.Capacity, 0)
	}
	return t
}

func ActiveCourses(courses []models.Course, now time.Time) []models.Course {
	out := []models.Course{}
	for _, c := range courses {
		if c.ActiveAt(now) {
			out = append(out, c)
		}
	}
	return out
}

// UpcomingCourses returns courses starting after now, earliest first.
// limit <= 0 disables truncation.
func UpcomingCourses(courses []models.Course, now time.Time, limit int) []models.Course {
	out := []models.Course{}
	for _, c := range courses {
		if c.UpcomingAt(now) {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Course) int {
		return a.Start.Compare(*b.Start)
	})
	return truncate(out, limit)
}

func PaidCounts(registrations []models.Registration) (paid, unpaid int) {
	for _, r := range registrations {
		if r.Paid {
			paid++
		}
	}
	return paid, len(registrations) - paid
}

// CourseRegistrationCounts tallies registrations per course, busiest first.
// Registrations pointing at unknown courses are not counted anywhere.
func CourseRegistrationCounts(courses []models.Course, registrations []models.Registration, limit int) []models.CourseCount {
	tally := countByCourse(registrations, nil)

	out := make([]models.CourseCount, 0, len(courses))
	for _, c := range courses {
		out = append(out, models.CourseCount{
			CourseID: c.ID,
			Name:     c.DisplayName(),
			Count:    tally[c.ID.Canonical()],
		})
	}
	slices.SortStableFunc(out, func(a, b models.CourseCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return truncate(out, limit)
}

func StatusDistribution(courses []models.Course) []models.StatusBucket {
	counts := make(map[models.CourseStatus]int, len(models.CourseStatuses))
	for _, c := range courses {
		counts[c.Status]++
	}

	out := []models.StatusBucket{}
	for _, s := range models.CourseStatuses {
		if counts[s] == 0 {
			continue
		}
		out = append(out, models.StatusBucket{
			Status: s,
			Label:  s.Label(),
			Color:  s.Color(),
			Count:  counts[s],
		})
	}
	return out
}

// Revenue sums price × paid registrations over all courses. Negative prices
// count as zero.
func Revenue(courses []models.Course, registrations []models.Registration) decimal.Decimal {
	paid := countByCourse(registrations, func(r models.Registration) bool { return r.Paid })

	total := decimal.Zero
	for _, c := range courses {
		n := paid[c.ID.Canonical()]
		if n == 0 || !c.Price.IsPositive() {
			continue
		}
		total = total.Add(c.Price.Mul(decimal.NewFromInt(int64(n))))
	}
	return total
}

// RecentRegistrations returns the newest registrations first; a missing date
// sorts as the zero time.
func RecentRegistrations(ix *Index, registrations []models.Registration, limit int) []models.RecentRegistration {
	sorted := slices.Clone(registrations)
	slices.SortStableFunc(sorted, func(a, b models.Registration) int {
		return registeredAt(b).Compare(registeredAt(a))
	})
	sorted = truncate(sorted, limit)

	out := make([]models.RecentRegistration, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, models.RecentRegistration{
			ID:              r.ID,
			ParticipantName: ix.participantName(r.Participant),
			CourseTitle:     ix.courseTitle(r.Course),
			RegisteredAt:    r.RegisteredAt,
			Paid:            r.Paid,
		})
	}
	return out
}

// Occupancy reports fill level for running and upcoming courses.
func Occupancy(ix *Index, courses []models.Course, registrations []models.Registration, now time.Time) []models.CourseOccupancy {
	tally := countByCourse(registrations, nil)

	out := []models.CourseOccupancy{}
	for _, c := range courses {
		if !c.ActiveAt(now) && !c.UpcomingAt(now) {
			continue
		}
		o := models.CourseOccupancy{
			CourseID:        c.ID,
			Title:           c.DisplayName(),
			LecturerName:    ix.lecturerName(c.Lecturer),
			RoomName:        ix.roomName(c.Room),
			Registrations:   tally[c.ID.Canonical()],
			MaxParticipants: c.MaxParticipants,
		}
		if c.MaxParticipants > 0 {
			o.Occupancy = float64(o.Registrations) / float64(c.MaxParticipants)
		}
		out = append(out, o)
	}
	return out
}

func countByCourse(registrations []models.Registration, keep func(models.Registration) bool) map[ref.ID]int {
	tally := make(map[ref.ID]int)
	for _, r := range registrations {
		if r.Course.IsZero() || (keep != nil && !keep(r)) {
			continue
		}
		tally[r.Course.Canonical()]++
	}
	return tally
}

func registeredAt(r models.Registration) time.Time {
	if r.RegisteredAt == nil {
		return time.Time{}
	}
	return *r.RegisteredAt
}

func truncate[T any](s []T, limit int) []T {
	if limit > 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
