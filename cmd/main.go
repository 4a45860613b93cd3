package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/olegkuprianov/webapp-starter/internal/auth"
	"github.com/olegkuprianov/webapp-starter/internal/config"
	"github.com/olegkuprianov/webapp-starter/internal/events"
	"github.com/olegkuprianov/webapp-starter/internal/handlers"
	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/mailer"
	"github.com/olegkuprianov/webapp-starter/internal/middlewares"
	"github.com/olegkuprianov/webapp-starter/internal/repositories"
	"github.com/olegkuprianov/webapp-starter/internal/services"
	"github.com/olegkuprianov/webapp-starter/internal/sessions"
	"github.com/olegkuprianov/webapp-starter/internal/web"
	"github.com/olegkuprianov/webapp-starter/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/olegkuprianov/webapp-starter/docs"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title webapp-starter API
// @version 1.0.0
// @description User accounts web application: registration, login, password recovery and user management
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to parse config:", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		fmt.Fprintln(os.Stderr, "application stopped with error:", err)
		os.Exit(1)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// run wires the database, session store, event stream, mailer,
// services and the HTTP server, and handles graceful shutdown.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	// Connect to PostgreSQL and apply migrations
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDatabase)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres connection: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.PGMaxOpenConns)
	db.SetMaxIdleConns(cfg.PGMaxIdleConns)

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Session store: Redis when configured, in-memory otherwise
	var sessionStore sessions.Store
	if cfg.RedisHost != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection: %w", err)
		}
		defer rdb.Close()
		sessionStore = sessions.NewRedisStore(rdb, cfg.SessionTTL)
		logger.Log.Infof("Sessions stored in Redis at %s:%d", cfg.RedisHost, cfg.RedisPort)
	} else {
		sessionStore = sessions.NewMemoryStore(cfg.SessionTTL)
		logger.Log.Info("Sessions stored in memory")
	}
	sessionManager := sessions.NewManager(sessionStore, cfg.SessionTTL)

	// Event stream: Kafka when configured
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Log.Infof("Publishing events to Kafka topic %s", cfg.KafkaTopic)
	} else {
		publisher = events.NewNopPublisher()
	}

	// Outgoing mail: SMTP when configured, log otherwise
	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(
			fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
			cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPassword,
		)
	} else {
		mail = mailer.NewLogMailer()
	}

	cookies := auth.NewCookieAuthenticator(cfg.AuthSecret, cfg.AuthExp)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, mail, publisher, cfg.BaseURL)
	userService := services.NewUserService(userReadRepo, userWriteRepo, publisher, cfg.ItemsPerPage)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware)
	r.Use(middlewares.SessionMiddleware(sessionManager))
	r.Use(middlewares.TxMiddleware(db))
	r.Use(middlewares.IdentityMiddleware(cookies, userReadRepo))

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(middlewares.CORSMiddleware)

		root := handlers.NewAPIRootHandler()
		r.Get("/", root)
		r.Options("/*", root)

		r.Get("/me", handlers.NewMeHandler())

		r.Route("/users", func(r chi.Router) {
			r.Post("/login", handlers.NewLoginHandler(authService, cookies))
			r.Post("/register", handlers.NewRegisterHandler(authService, cookies))
			r.Post("/forgot_password", handlers.NewForgotPasswordHandler(authService))
			r.Post("/reset_password", handlers.NewResetPasswordHandler(authService))

			r.With(middlewares.RequirePermission(auth.PermAdmin, false)).
				Get("/", handlers.NewUserListHandler(userService))
			r.With(middlewares.RequirePermission(auth.PermSuperuser, false)).
				Post("/", handlers.NewUserCreateHandler(userService))

			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.With(middlewares.RequirePermission(auth.PermUser, false)).
					Get("/", handlers.NewUserGetHandler(userService))
				update := handlers.NewUserUpdateHandler(userService)
				r.With(middlewares.RequirePermission(auth.PermSuperuser, false)).Post("/", update)
				r.With(middlewares.RequirePermission(auth.PermSuperuser, false)).Put("/", update)
				r.With(middlewares.RequirePermission(auth.PermSuperuser, false)).Patch("/", update)
				r.With(middlewares.RequirePermission(auth.PermAdmin, false)).
					Delete("/", handlers.NewUserDeleteHandler(userService))
			})
		})
	})

	// HTML surface
	r.Get("/", web.NewIndexHandler())
	r.Route("/users", func(r chi.Router) {
		login := web.NewLoginPageHandler(authService, cookies)
		r.Get("/login", login)
		r.Post("/login", login)
		r.Get("/logout", web.NewLogoutHandler(cookies, sessionManager))

		register := web.NewRegisterPageHandler(authService, cookies)
		r.Get("/register", register)
		r.Post("/register", register)

		forgot := web.NewForgotPasswordPageHandler(authService)
		r.Get("/forgot_password", forgot)
		r.Post("/forgot_password", forgot)

		reset := web.NewResetPasswordPageHandler(authService)
		r.Get("/reset_password", reset)
		r.Post("/reset_password", reset)

		r.With(middlewares.RequirePermission(auth.PermUser, true)).
			Get("/me", web.NewMePageHandler())
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", cfg.AppHost, cfg.AppPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", cfg.AppHost, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
