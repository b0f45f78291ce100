package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ldworks/trainee-management/internal"
	"github.com/ldworks/trainee-management/internal/accessrequest"
	accessrequestPostgres "github.com/ldworks/trainee-management/internal/accessrequest/postgres"
	"github.com/ldworks/trainee-management/internal/auth"
	authPostgres "github.com/ldworks/trainee-management/internal/auth/postgres"
	"github.com/ldworks/trainee-management/internal/core/events"
	"github.com/ldworks/trainee-management/internal/dashboard"
	dashboardPostgres "github.com/ldworks/trainee-management/internal/dashboard/postgres"
	"github.com/ldworks/trainee-management/internal/department"
	departmentPostgres "github.com/ldworks/trainee-management/internal/department/postgres"
	"github.com/ldworks/trainee-management/internal/internship"
	internshipPostgres "github.com/ldworks/trainee-management/internal/internship/postgres"
	"github.com/ldworks/trainee-management/internal/mentorship"
	mentorshipPostgres "github.com/ldworks/trainee-management/internal/mentorship/postgres"
	"github.com/ldworks/trainee-management/internal/notification"
	"github.com/ldworks/trainee-management/internal/transport"
	"github.com/ldworks/trainee-management/internal/transport/rest"
	"github.com/ldworks/trainee-management/internal/user"
	userPostgres "github.com/ldworks/trainee-management/internal/user/postgres"
	"github.com/ldworks/trainee-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	// The contract is served at /openapi.yml and /swagger; refuse to start
	// with a document that does not parse.
	if err := validateOpenAPIDocument("./api/openapi.yml"); err != nil {
		deps.Logger.Error("openapi document is invalid", "error", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	log := deps.Logger

	bus := events.NewEventBus(log)

	// Repositories
	authRepo := authPostgres.NewRepository(deps.GormDB)
	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	departmentRepo := departmentPostgres.NewDepartmentRepository(deps.GormDB)
	accessRequestRepo := accessrequestPostgres.NewAccessRequestRepository(deps.GormDB)
	internshipRepo := internshipPostgres.NewInternshipRepository(deps.GormDB)
	mentorshipRepo := mentorshipPostgres.NewMentorshipRepository(deps.GormDB)
	dashboardRepo := dashboardPostgres.NewDashboardRepository(deps.DB)

	// Services
	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, cfg.Security.BCryptCost)
	userService := user.NewService(userRepo, log)
	departmentService := department.NewService(departmentRepo, log)
	accessRequestService := accessrequest.NewService(accessRequestRepo, bus, cfg.Security.BCryptCost, log)
	mentorshipService := mentorship.NewService(mentorshipRepo, internshipRepo, bus, log)
	internshipService := internship.NewService(internshipRepo, mentorshipService, bus, log)
	dashboardService := dashboard.NewService(dashboardRepo, log)

	// A terminal transition releases the request's active mentor assignment.
	bus.Subscribe(events.EventTypeInternshipTransitioned, mentorshipService.HandleRequestClosed)

	if cfg.Notification.Enabled {
		mailer := notification.NewMailer(cfg.Notification, log)
		mailer.Register(bus)
		log.Info("notification mailer registered", "smtp_host", cfg.Notification.SMTPHost)
	}

	guard := auth.NewGuard(log)
	baseHandler := transport.NewBaseHandler(log)

	handlers := rest.Handlers{
		Auth:          auth.NewHandler(authService),
		User:          user.NewHandler(userService),
		Department:    department.NewHandler(baseHandler, departmentService),
		AccessRequest: accessrequest.NewHandler(accessRequestService),
		Internship:    internship.NewHandler(internshipService),
		Mentorship:    mentorship.NewHandler(mentorshipService),
		Dashboard:     dashboard.NewHandler(dashboardService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, guard, log)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-open pgx connection pool so both
// access paths share one pool and one set of limits.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
}

func validateOpenAPIDocument(path string) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return fmt.Errorf("openapi document failed validation: %w", err)
	}
	return nil
}
