package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrflow/internal/domain/appraisal"
	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/domain/documents"
	"hrflow/internal/domain/jobapps"
	"hrflow/internal/domain/leave"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/domain/onboarding"
	"hrflow/internal/domain/reminders"
	"hrflow/internal/domain/reports"
	"hrflow/internal/platform/config"
	"hrflow/internal/platform/db"
	"hrflow/internal/platform/email"
	"hrflow/internal/platform/jobs"
	appraisalhandler "hrflow/internal/transport/http/handlers/appraisal"
	audithandler "hrflow/internal/transport/http/handlers/audit"
	authhandler "hrflow/internal/transport/http/handlers/auth"
	corehandler "hrflow/internal/transport/http/handlers/core"
	documentshandler "hrflow/internal/transport/http/handlers/documents"
	jobappshandler "hrflow/internal/transport/http/handlers/jobapps"
	jobshandler "hrflow/internal/transport/http/handlers/jobs"
	leavehandler "hrflow/internal/transport/http/handlers/leave"
	notificationshandler "hrflow/internal/transport/http/handlers/notifications"
	onboardinghandler "hrflow/internal/transport/http/handlers/onboarding"
	reportshandler "hrflow/internal/transport/http/handlers/reports"
	"hrflow/internal/transport/http/middleware"
)

// App bundles everything the HTTP layer and the background jobs share. Tests
// build one against a scratch database.
type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler

	Auth       *auth.Service
	Core       *core.Service
	Appraisal  *appraisal.Service
	Reminders  *reminders.Service
	Scheduler  *reminders.Scheduler
	Dispatcher *reminders.Dispatcher
	Leave      *leave.Service
	Jobs       *jobs.Runner
}

// New wires stores, services, and routes. It does not start listening.
func New(cfg config.Config, pool *pgxpool.Pool, logger *slog.Logger) *App {
	authService := auth.NewService(auth.NewStore(pool))
	coreService := core.NewService(core.NewStore(pool))
	appraisalService := appraisal.NewService(appraisal.NewStore(pool))

	mailer := email.New(cfg)
	notificationService := notifications.New(notifications.NewStore(pool), mailer, cfg.EmailFrom)
	leaveService := leave.NewService(leave.NewStore(pool), notificationService)

	reminderStore := reminders.NewStore(pool)
	reminderService := reminders.NewService(reminderStore)
	scheduler := reminders.NewScheduler(reminderStore, logger, cfg.ReminderWindowDays, cfg.EmailMaxRetries)
	dispatcher := reminders.NewDispatcher(reminderStore, mailer, logger, cfg.EmailFrom, cfg.DispatchBatchSize, cfg.DispatchConcurrency, cfg.SendTimeout)

	documentService := documents.NewService(documents.NewStore(pool))
	onboardingService := onboarding.NewService(onboarding.NewStore(pool))
	jobappService := jobapps.NewService(jobapps.NewStore(pool))
	reportService := reports.NewService(appraisalService)
	auditService := audit.New(pool)
	runner := jobs.New(pool, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService, cfg.JWTSecret).RegisterRoutes(r)
		corehandler.NewHandler(coreService, authService, auditService).RegisterRoutes(r)
		appraisalhandler.NewHandler(appraisalService, reminderService, coreService, authService, auditService).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, coreService, authService, auditService).RegisterRoutes(r)
		notificationshandler.NewHandler(notificationService).RegisterRoutes(r)
		documentshandler.NewHandler(documentService, authService).RegisterRoutes(r)
		onboardinghandler.NewHandler(onboardingService, authService).RegisterRoutes(r)
		jobappshandler.NewHandler(jobappService, authService).RegisterRoutes(r)
		reportshandler.NewHandler(reportService, authService).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authService).RegisterRoutes(r)
		jobshandler.NewHandler(runner, scheduler, dispatcher, leaveService, authService).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return &App{
		Config:     cfg,
		DB:         pool,
		Router:     router,
		Auth:       authService,
		Core:       coreService,
		Appraisal:  appraisalService,
		Reminders:  reminderService,
		Scheduler:  scheduler,
		Dispatcher: dispatcher,
		Leave:      leaveService,
		Jobs:       runner,
	}
}

// NewFromConfig connects to the database, applies migrations and seed data,
// and wires the app. Tests point it at a scratch database.
func NewFromConfig(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, findMigrationsDir("migrations")); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	return New(cfg, pool, logger), nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.DB.Close()
}

// findMigrationsDir walks up from the working directory until it finds the
// migrations directory, so tests running from a package directory still
// resolve it.
func findMigrationsDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	base, err := os.Getwd()
	if err != nil {
		return dir
	}
	for {
		candidate := filepath.Join(base, dir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(base)
		if parent == base {
			return dir
		}
		base = parent
	}
}

// spaHandler serves the built frontend, falling back to index.html for
// client-side routes.
type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}

// scheduleJobs registers the cron specs from config. Empty specs leave the
// jobs reachable only through their HTTP triggers.
func (a *App) scheduleJobs(logger *slog.Logger) error {
	if err := a.Jobs.Schedule(a.Config.ReminderScanSpec, jobs.JobReminderScan, "", func(ctx context.Context) (any, error) {
		return a.Scheduler.Run(ctx)
	}); err != nil {
		return err
	}
	if err := a.Jobs.Schedule(a.Config.EmailDispatchSpec, jobs.JobEmailDispatch, "", func(ctx context.Context) (any, error) {
		return a.Dispatcher.Run(ctx)
	}); err != nil {
		return err
	}
	return a.Jobs.Schedule(a.Config.LeaveAccrualSpec, jobs.JobLeaveAccrual, "", func(ctx context.Context) (any, error) {
		tenants, err := a.Jobs.ListTenants(ctx)
		if err != nil {
			return nil, err
		}
		summaries := make(map[string]leave.AccrualSummary, len(tenants))
		for _, tenantID := range tenants {
			summary, err := a.Leave.RunAccruals(ctx, tenantID)
			if err != nil {
				logger.Warn("leave accrual failed", "tenantId", tenantID, "err", err)
				continue
			}
			summaries[tenantID] = summary
		}
		return summaries, nil
	})
}

// Run boots the whole application and blocks until SIGINT/SIGTERM.
func Run() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()
	if err := app.scheduleJobs(logger); err != nil {
		logger.Error("job scheduling failed", "err", err)
		os.Exit(1)
	}
	app.Jobs.Start()
	defer app.Jobs.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", "err", err)
		}
	}
}
