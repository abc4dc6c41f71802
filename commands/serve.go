package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/restaurant-tables/database"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/middlewares"
	"github.com/yeremiapane/restaurant-tables/router"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the live floor websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}

		if cfg.GinMode == "release" {
			gin.SetMode(gin.ReleaseMode)
		}

		if !skipMigrate {
			if err := database.Migrate(db); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		floorHub := hub.NewHub()
		var b services.Broadcaster = floorHub
		if cfg.RedisURL != "" {
			client := hub.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
			defer client.Close()
			publisher := hub.NewRedisPublisher(client, "")
			b = publisher
			go func() {
				// publisher beralih ke floorHub sendiri bila relay mati
				if err := publisher.Relay(ctx, floorHub); err != nil {
					utils.ErrorLogger.Errorf("redis relay stopped, falling back to local delivery: %v", err)
				}
			}()
		}

		floor := services.NewFloor(db, b, services.WithReconcileOnWrite(cfg.ReconcileOnWrite))
		r := router.SetupRouter(router.Options{
			Floor:       floor,
			Hub:         floorHub,
			CORSOrigin:  cfg.CORSOrigin,
			RateLimiter: middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		})

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		utils.InfoLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run AutoMigrate on start")
	rootCmd.AddCommand(serveCmd)
}
