package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"modernmen-backend/config"
	"modernmen-backend/controllers"
	"modernmen-backend/middleware"
	"modernmen-backend/models"
	"modernmen-backend/routes"
	"modernmen-backend/services"
	"modernmen-backend/utils"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		utils.Log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "modernmen",
		Short:         "ModernMen salon management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setupDatabase(); err != nil {
				return err
			}
			defer config.CloseDB()
			utils.Log.Info("Migration completed successfully")
			return nil
		},
	})

	var seedFile string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Load a tenant with its staff and catalogue from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(seedFile)
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()
			fixtures, err := services.LoadSeed(f)
			if err != nil {
				return err
			}

			db, err := setupDatabase()
			if err != nil {
				return err
			}
			defer config.CloseDB()

			tenant, err := services.ApplySeed(db, fixtures)
			if err != nil {
				return err
			}
			utils.Log.WithFields(logrus.Fields{
				"tenant_id": tenant.ID.String(),
				"slug":      tenant.Slug,
			}).Info("Database seeded successfully")
			return nil
		},
	}
	seed.Flags().StringVar(&seedFile, "file", "fixtures.yaml", "seed fixtures file")
	root.AddCommand(seed)

	return root
}

// setupDatabase loads config, connects and migrates.
func setupDatabase() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := config.ConnectDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := setupDatabase()
	if err != nil {
		return err
	}
	defer config.CloseDB()
	cfg := config.App

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	notifier := services.NewChannels(cfg)
	hub := services.NewHub()
	reminders := services.NewReminderService(db, notifier)
	if cfg.Reminders.Enabled {
		if err := reminders.StartScheduler(cfg.Reminders.Schedule); err != nil {
			return err
		}
		defer func() { <-reminders.Stop().Done() }()
	}

	var store middleware.LimitStore
	if cfg.RateLimit.RedisURL != "" {
		redisStore, err := middleware.NewRedisStore(cfg.RateLimit.RedisURL, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		memory := middleware.NewMemoryStore(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		memory.StartCleanup(ctx, time.Minute)
		store = memory
	}

	verifier, err := controllers.NewOIDCVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}

	r := routes.SetupRouter(cfg, routes.Deps{
		Appointments: services.NewAppointmentService(db, notifier, hub),
		Resources:    services.NewResourceService(db, notifier, hub),
		HR:           services.NewHRService(db),
		Orders:       services.NewOrderService(db, notifier),
		Reminders:    reminders,
		Media:        services.NewMediaStore(cfg.MediaDir),
		Hub:          hub,
		LimitStore:   store,
		OIDC:         verifier,
	})
	if !cfg.IsProduction() {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		utils.Log.WithField("port", cfg.Server.Port).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	utils.Log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		utils.Log.Debugf("%-6s %s", route.Method, route.Path)
	}
}
