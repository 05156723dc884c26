package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rullypratama/sms-backend/internal/config"
	"github.com/rullypratama/sms-backend/internal/domain/account"
	"github.com/rullypratama/sms-backend/internal/domain/caserecord"
	"github.com/rullypratama/sms-backend/internal/domain/facility"
	"github.com/rullypratama/sms-backend/internal/domain/masterdata"
	"github.com/rullypratama/sms-backend/internal/platform/auth"
	"github.com/rullypratama/sms-backend/internal/platform/db"
	"github.com/rullypratama/sms-backend/internal/platform/mail"
	"github.com/rullypratama/sms-backend/internal/platform/middleware"
	"github.com/rullypratama/sms-backend/internal/platform/notify"
	"github.com/rullypratama/sms-backend/internal/platform/queue"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sms-server",
		Short: "Malaria case reporting and referral API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(notifyWorkerCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func notifyWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify-worker",
		Short: "Consume the notification queue and deliver emails",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotifyWorker()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// openRegionLists are the read-only reference-data endpoints; registration
// forms query them before a session exists.
var openRegionLists = map[string]bool{
	"/province-list/":     true,
	"/city-list/":         true,
	"/district-list/":     true,
	"/sub-district-list/": true,
}

// authSkipper exempts login, health probes, the region lists, and the open
// case-detail page linked from notification emails.
func authSkipper(c echo.Context) bool {
	path := c.Path()
	method := c.Request().Method
	switch {
	case path == "/auth/" && method == http.MethodPost:
		return true
	case path == "/health" || path == "/health/db":
		return true
	case path == "/case-information-list/:id" && method == http.MethodGet:
		return true
	case openRegionLists[path] && method == http.MethodGet:
		return true
	}
	return false
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL, cfg.JWTCookieName)

	// Repositories
	provinceRepo := masterdata.NewProvinceRepoPG(pool)
	cityRepo := masterdata.NewCityRepoPG(pool)
	districtRepo := masterdata.NewDistrictRepoPG(pool)
	subDistrictRepo := masterdata.NewSubDistrictRepoPG(pool)
	facilityRepo := facility.NewRepoPG(pool)
	accountRepo := account.NewRepoPG(pool)
	caseRepo := caserecord.NewCaseRepoPG(pool)
	routeRepo := caserecord.NewRouteRepoPG(pool)

	// Services
	masterSvc := masterdata.NewService(provinceRepo, cityRepo, districtRepo, subDistrictRepo)
	facilitySvc := facility.NewService(facilityRepo)
	accountSvc := account.NewService(accountRepo)

	// Notification dispatch
	dispatcherCfg := notify.DispatcherConfig{
		Mode:         notify.Mode(cfg.NotifyMode),
		Sender:       mail.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPFrom),
		Accounts:     accountRepo,
		Distribution: cfg.NotifyDistribution,
		BaseURL:      cfg.PublicBaseURL,
		Logger:       logger,
	}
	if dispatcherCfg.Mode == notify.ModeQueue {
		publisher := queue.NewPublisher(cfg.KafkaBrokers, cfg.NotifyTopic)
		defer publisher.Close()
		dispatcherCfg.Publisher = publisher
	}
	dispatcher := notify.NewDispatcher(dispatcherCfg)

	inTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.InTx(ctx, pool, fn)
	}
	caseSvc := caserecord.NewService(caseRepo, routeRepo, facilityRepo, accountRepo, masterSvc, dispatcher, inTx, logger)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(auth.Middleware(issuer, authSkipper))

	masterdata.NewHandler(masterSvc).RegisterRoutes(e)
	facility.NewHandler(facilitySvc).RegisterRoutes(e)
	account.NewHandler(accountSvc, facilitySvc, issuer).RegisterRoutes(e)
	caserecord.NewHandler(caseSvc).RegisterRoutes(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runNotifyWorker() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatal().Msg("KAFKA_BROKERS is required for the notify worker")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	consumer := queue.NewConsumer(cfg.KafkaBrokers, cfg.NotifyTopic, cfg.NotifyGroup)
	defer consumer.Close()

	worker := notify.NewWorker(notify.WorkerConfig{
		Consumer:     consumer,
		Sender:       mail.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPFrom),
		Accounts:     account.NewRepoPG(pool),
		Deliveries:   notify.NewDeliveryRepoPG(pool),
		Distribution: cfg.NotifyDistribution,
		InTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.InTx(ctx, pool, fn)
		},
		Logger: logger,
	})

	logger.Info().
		Strs("brokers", cfg.KafkaBrokers).
		Str("topic", cfg.NotifyTopic).
		Str("group", cfg.NotifyGroup).
		Msg("notify worker started")
	if err := worker.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("notify worker stopped")
	return nil
}
