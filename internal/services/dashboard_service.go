package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"course-dashboard/internal/datasource"
	"course-dashboard/internal/stats"
	"course-dashboard/internal/status"
	"course-dashboard/models"
	"course-dashboard/monitoring"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchTimeout bounds one load cycle.
const DefaultFetchTimeout = 30 * time.Second

const (
	KindParticipant = "participant"
	KindCourse      = "course"
	KindLecturer    = "lecturer"
	KindRoom        = "room"
)

// dashboard is one published load cycle. It is never mutated after Store.
type dashboard struct {
	state models.DashboardState
	snap  models.Snapshot
	index *stats.Index
}

type DashboardService struct {
	data     datasource.DataService
	agg      *stats.Aggregator
	notifier Notifier
	monitor  *monitoring.Monitor
	timeout  time.Duration

	current atomic.Pointer[dashboard]
	reload  chan struct{}
}

// NewDashboardService creates the service in the "not loaded" state. notifier
// may be nil.
func NewDashboardService(data datasource.DataService, agg *stats.Aggregator, notifier Notifier, monitor *monitoring.Monitor) *DashboardService {
	s := &DashboardService{
		data:     data,
		agg:      agg,
		notifier: notifier,
		monitor:  monitor,
		timeout:  DefaultFetchTimeout,
		reload:   make(chan struct{}, 1),
	}
	s.current.Store(&dashboard{
		state: models.DashboardState{Stats: stats.Empty()},
		index: stats.NewIndex(models.Snapshot{}),
	})
	return s
}

// WithFetchTimeout bounds each load cycle; d <= 0 keeps the default.
func (s *DashboardService) WithFetchTimeout(d time.Duration) *DashboardService {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// State returns the last published dashboard state.
func (s *DashboardService) State() models.DashboardState {
	return s.current.Load().state
}

// Load fetches all five collections concurrently and publishes the derived
// figures. Any failed fetch discards the whole cycle: the published state is
// then loaded and failed with empty figures, and the error wraps
// status.ErrFetchFailed.
//
// The cycle is shared by every viewer, so it ignores cancellation of ctx and
// is bounded by the fetch timeout instead.
func (s *DashboardService) Load(ctx context.Context) (models.DashboardState, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	cycleID := uuid.NewString()
	started := time.Now()

	loading := *s.current.Load()
	loading.state.CycleID = cycleID
	loading.state.Loading = true
	s.current.Store(&loading)

	snap, err := s.fetch(ctx)
	loadedAt := s.agg.Now()

	if err != nil {
		slog.Error("dashboard load failed", "cycle_id", cycleID, "duration", time.Since(started), "error", err)
		s.monitor.TrackLoad(time.Since(started), true, models.Stats{})

		failed := &dashboard{
			state: models.DashboardState{
				CycleID:  cycleID,
				Loaded:   true,
				Failed:   true,
				Error:    err.Error(),
				LoadedAt: &loadedAt,
				Stats:    stats.Empty(),
			},
			index: stats.NewIndex(models.Snapshot{}),
		}
		s.current.Store(failed)
		s.notify(ctx, failed.state)
		return failed.state, fmt.Errorf("load: %w: %w", status.ErrFetchFailed, err)
	}

	d := &dashboard{
		state: models.DashboardState{
			CycleID:  cycleID,
			Loaded:   true,
			LoadedAt: &loadedAt,
			Stats:    s.agg.Compute(snap),
		},
		snap:  snap,
		index: stats.NewIndex(snap),
	}
	s.current.Store(d)
	s.monitor.TrackLoad(time.Since(started), false, d.state.Stats)

	slog.Info("dashboard loaded",
		"cycle_id", cycleID,
		"duration", time.Since(started),
		"courses", len(snap.Courses),
		"registrations", len(snap.Registrations),
	)

	s.notify(ctx, d.state)
	return d.state, nil
}

// fetch joins the five list calls. The first error cancels the others.
func (s *DashboardService) fetch(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Lecturers, err = s.data.ListLecturers(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Participants, err = s.data.ListParticipants(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Rooms, err = s.data.ListRooms(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Courses, err = s.data.ListCourses(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Registrations, err = s.data.ListRegistrations(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

func (s *DashboardService) notify(ctx context.Context, state models.DashboardState) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, state); err != nil {
		slog.Warn("dashboard notify failed", "cycle_id", state.CycleID, "error", err)
		s.monitor.TrackNotifyFailure()
	}
}

// Upcoming returns the upcoming courses of the last published snapshot,
// evaluated at the current instant.
func (s *DashboardService) Upcoming(compact bool) []models.Course {
	opts := s.agg.Options()
	limit := opts.UpcomingLimit
	if compact {
		limit = opts.CompactUpcomingLimit
	}
	return stats.UpcomingCourses(s.current.Load().snap.Courses, s.agg.Now(), limit)
}

// Resolve looks a reference up in the last published snapshot.
func (s *DashboardService) Resolve(kind, reference string) (string, error) {
	ix := s.current.Load().index
	switch kind {
	case KindParticipant:
		return ix.ParticipantName(reference), nil
	case KindCourse:
		return ix.CourseTitle(reference), nil
	case KindLecturer:
		return ix.LecturerName(reference), nil
	case KindRoom:
		return ix.RoomName(reference), nil
	}
	return "", fmt.Errorf("%w: %q", status.ErrUnknownKind, kind)
}

// RequestReload schedules a load on the reloader. Requests made while one is
// pending are coalesced.
func (s *DashboardService) RequestReload() {
	select {
	case s.reload <- struct{}{}:
	default:
	}
}

// RunReloader serves RequestReload until ctx is done.
func (s *DashboardService) RunReloader(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.reload:
			if _, err := s.Load(ctx); err != nil {
				slog.Error("dashboard reload", "error", err)
			}
		}
	}
}
