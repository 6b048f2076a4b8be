// File: /main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub-api/config"
	"eventhub-api/database"
	"eventhub-api/jobs"
	"eventhub-api/middleware"
	"eventhub-api/routes"
	"eventhub-api/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:          "eventhub-api",
		Short:        "EventHub events marketplace API",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging for gin and SQL")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and the reservation expiry job",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(config.Load(), debug)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and seed the admin account",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.Load()
				_, err := openDatabase(cfg, debug)
				return err
			},
		},
		&cobra.Command{
			Use:   "expire-reservations",
			Short: "Release unpaid reservations whose hold has lapsed, once",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.Load()
				db, err := openDatabase(cfg, debug)
				if err != nil {
					return err
				}
				svc := buildServices(db, cfg)
				released, err := jobs.NewReservationExpiryJob(svc.Enrollment, cfg.ReservationSweepInterval).RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				log.Printf("Released %d expired reservations", released)
				return nil
			},
		},
	)
	return root
}

func openDatabase(cfg *config.Config, debug bool) (*gorm.DB, error) {
	db, err := database.Initialize(cfg.DBDriver, cfg.DatabaseURL, debug)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := database.SeedData(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: Failed to seed database: %v", err)
	}
	return db, nil
}

func buildServices(db *gorm.DB, cfg *config.Config) *routes.Services {
	if cfg.StripeSecretKey == "" {
		log.Println("Warning: STRIPE_SECRET_KEY is not set, paid enrollments will fail")
	}
	gateway := services.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	return routes.NewServices(db, cfg, gateway, services.NewEmailService(cfg))
}

func serve(cfg *config.Config, debug bool) error {
	db, err := openDatabase(cfg, debug)
	if err != nil {
		return err
	}
	svc := buildServices(db, cfg)

	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ErrorHandler())
	routes.SetupRoutes(router, svc, cfg)

	expiry := jobs.NewReservationExpiryJob(svc.Enrollment, cfg.ReservationSweepInterval)
	expiry.Start()
	defer expiry.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting EventHub API server on port %s", cfg.Port)
		log.Printf("Health check available at: http://localhost:%s/ping", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
