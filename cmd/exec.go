package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course-dashboard/config"
	"course-dashboard/internal/datasource"
	"course-dashboard/internal/handlers"
	"course-dashboard/internal/services"
	"course-dashboard/internal/stats"
	"course-dashboard/monitoring"
	"course-dashboard/security"
	"course-dashboard/utils"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"

	_ "course-dashboard/migrations"
)

var dashboardCollections = []string{
	datasource.CollectionLecturers,
	datasource.CollectionParticipants,
	datasource.CollectionRooms,
	datasource.CollectionCourses,
	datasource.CollectionRegistrations,
}

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey
	pnConfig.UUID = "course-dashboard-" + uuid.NewString()

	pn := pubnub.NewPubNub(pnConfig)

	monitor := monitoring.NewMonitor()

	// Initialize services
	dashboardService, err := newDashboardService(app, cfg, services.NewPubNubNotifier(pn, cfg.PubNubChannel), monitor)
	if err != nil {
		return err
	}

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})
	app.RootCmd.AddCommand(newStatsCommand(app, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start background tasks
	go dashboardService.RunReloader(ctx)

	// Setup graceful shutdown
	go handleShutdown(cancel)

	if cfg.Dashboard.ReloadOnChange && cfg.DataSource == config.SourceLocal {
		setupReloadHooks(app, dashboardService)
	}

	// Redis is only needed by the HTTP server, so subcommands such as
	// "stats" and "migrate" run without it.
	bindServe(app, serveDeps{
		cfg:       cfg,
		monitor:   monitor,
		dashboard: dashboardService,
		connect: func() (*redis.Client, error) {
			return utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		},
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

type serveDeps struct {
	cfg       *config.Config
	monitor   *monitoring.Monitor
	dashboard *services.DashboardService
	connect   func() (*redis.Client, error)
}

// bindServe registers the HTTP routes. The redis connection is opened when
// the server starts and closed when the app terminates.
func bindServe(app core.App, deps serveDeps) {
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// Initialize Redis
		redisClient, err := deps.connect()
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
			if err := redisClient.Close(); err != nil {
				slog.Warn("redis close failed", "error", err)
			}
			return e.Next()
		})

		collectionCensus(app, deps.monitor)

		dashboardHandler := handlers.NewDashboardHandler(deps.dashboard)
		rateLimiter := security.NewRateLimiter(redisClient, deps.monitor, deps.cfg.RateLimitPerMinute)

		// Dashboard endpoints
		dashboard := se.Router.Group("/api/v1/dashboard")
		dashboard.BindFunc(rateLimiter.AntiBot, rateLimiter.DashboardRateLimit)
		dashboard.GET("", dashboardHandler.GetDashboard)
		dashboard.POST("/refresh", dashboardHandler.Refresh)
		dashboard.GET("/upcoming", dashboardHandler.Upcoming)
		dashboard.GET("/resolve", dashboardHandler.Resolve)

		if deps.cfg.EnableMetrics {
			se.Router.GET("/metrics", apis.WrapStdHandler(monitoring.Handler()))
		}

		// Health check
		se.Router.GET("/health", healthCheck(redisClient))

		if deps.cfg.Dashboard.LoadOnStart {
			deps.dashboard.RequestReload()
		}

		log.Println("Server routes registered")

		return se.Next()
	})
}

func newDashboardService(app *pocketbase.PocketBase, cfg *config.Config, notifier services.Notifier, monitor *monitoring.Monitor) (*services.DashboardService, error) {
	var data datasource.DataService
	switch cfg.DataSource {
	case config.SourceRemote:
		client, err := datasource.NewClient(datasource.ClientConfig{
			BaseURL: cfg.RemoteBaseURL,
			Token:   cfg.RemoteToken,
			PerPage: cfg.RemotePerPage,
			Timeout: cfg.FetchTimeout,
			Breaker: utils.BreakerSettings{
				MinRequests:  uint32(max(cfg.BreakerRequests, 0)),
				FailureRatio: cfg.BreakerRatio,
				Interval:     time.Minute,
				OpenTimeout:  cfg.BreakerTimeout,
				HalfOpenMax:  1,
			},
		})
		if err != nil {
			return nil, err
		}
		data = client
	default:
		data = datasource.NewRecordStore(app)
	}

	agg := stats.NewAggregator(stats.Options{
		UpcomingLimit:        cfg.Dashboard.UpcomingLimit,
		CompactUpcomingLimit: cfg.Dashboard.CompactUpcomingLimit,
		TopCoursesLimit:      cfg.Dashboard.TopCoursesLimit,
		RecentLimit:          cfg.Dashboard.RecentLimit,
	})

	return services.NewDashboardService(data, agg, notifier, monitor).WithFetchTimeout(cfg.FetchTimeout), nil
}

func healthCheck(redisClient *redis.Client) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := utils.RedisHealthCheck(redisClient); err != nil {
			return e.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}
}

// collectionCensus logs and records the row count of each dashboard
// collection.
func collectionCensus(app core.App, monitor *monitoring.Monitor) {
	for _, name := range dashboardCollections {
		row := dbx.NullStringMap{}
		if err := app.DB().Select("COUNT(*) AS total").From(name).One(&row); err != nil {
			log.Printf("Error counting %s: %v", name, err)
			continue
		}

		total := cast.ToInt(row["total"].String)
		monitor.TrackCollection(name, total)
		slog.Info("collection census", "collection", name, "total", total)
	}
}

// setupReloadHooks reloads the dashboard after any record change in the
// dashboard collections. Bursts of changes collapse into one reload.
func setupReloadHooks(app core.App, dashboardService *services.DashboardService) {
	reload := func(e *core.RecordEvent) error {
		slog.Info("dashboard collection changed", "collection", e.Record.Collection().Name, "id", e.Record.Id)
		dashboardService.RequestReload()
		return e.Next()
	}

	app.OnRecordAfterCreateSuccess(dashboardCollections...).BindFunc(reload)
	app.OnRecordAfterUpdateSuccess(dashboardCollections...).BindFunc(reload)
	app.OnRecordAfterDeleteSuccess(dashboardCollections...).BindFunc(reload)
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
