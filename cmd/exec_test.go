package cmd

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"course-dashboard/config"
	"course-dashboard/internal/services"
	"course-dashboard/internal/stats"
	"course-dashboard/monitoring"

	"github.com/go-redis/redismock/v9"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(mock redismock.ClientMock)
		status int
		body   string
	}{
		{
			name:   "healthy",
			setup:  func(mock redismock.ClientMock) { mock.ExpectPing().SetVal("PONG") },
			status: http.StatusOK,
			body:   `"healthy"`,
		},
		{
			name:   "redis down",
			setup:  func(mock redismock.ClientMock) { mock.ExpectPing().SetErr(errors.New("connection refused")) },
			status: http.StatusServiceUnavailable,
			body:   "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := redismock.NewClientMock()
			tt.setup(mock)

			rec := httptest.NewRecorder()
			e := &core.RequestEvent{}
			e.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
			e.Response = rec

			require.NoError(t, healthCheck(db)(e))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStatsCommand_Flags(t *testing.T) {
	command := newStatsCommand(nil, nil)

	assert.Equal(t, "stats", command.Use)
	for _, name := range []string{"pretty", "upcoming", "compact"} {
		assert.NotNil(t, command.Flags().Lookup(name), name)
	}
}

func newTestServeDeps(connect func() (*redis.Client, error)) serveDeps {
	monitor := monitoring.NewMonitor()
	return serveDeps{
		cfg:       &config.Config{},
		monitor:   monitor,
		dashboard: services.NewDashboardService(nil, stats.NewAggregator(stats.DefaultOptions()), nil, monitor),
		connect:   connect,
	}
}

func TestBindServe_ConnectsRedisOnlyWhenServing(t *testing.T) {
	app := core.NewBaseApp(core.BaseAppConfig{DataDir: t.TempDir()})
	errUnreachable := errors.New("dial tcp: connection refused")

	connects := 0
	bindServe(app, newTestServeDeps(func() (*redis.Client, error) {
		connects++
		return nil, errUnreachable
	}))
	assert.Zero(t, connects)

	err := app.OnServe().Trigger(&core.ServeEvent{App: app})

	assert.ErrorIs(t, err, errUnreachable)
	assert.ErrorContains(t, err, "serve:")
	assert.Equal(t, 1, connects)
}

func TestBindServe_RegistersRoutes(t *testing.T) {
	app := core.NewBaseApp(core.BaseAppConfig{DataDir: t.TempDir()})
	require.NoError(t, app.Bootstrap())
	t.Cleanup(func() { _ = app.ResetBootstrapState() })

	db, mock := redismock.NewClientMock()
	mock.ExpectPing().SetVal("PONG")
	bindServe(app, newTestServeDeps(func() (*redis.Client, error) { return db, nil }))

	pbRouter, err := apis.NewRouter(app)
	require.NoError(t, err)
	require.NoError(t, app.OnServe().Trigger(&core.ServeEvent{App: app, Router: pbRouter}))

	mux, err := pbRouter.BuildMux()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.NoError(t, app.OnTerminate().Trigger(&core.TerminateEvent{App: app}))
}
