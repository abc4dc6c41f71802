package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/restaurant-tables/config"
	"github.com/yeremiapane/restaurant-tables/database"
	"github.com/yeremiapane/restaurant-tables/utils"
	"gorm.io/gorm"
)

var (
	// Global flags
	dsnOverride string
	logLevel    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "restaurant-tables",
	Short: "Table and reservation allocation service",
	Long: `Keeps restaurant tables and reservations in step: which table is free,
who is seated where, and what the floor looks like on any given day.

Configuration comes from the environment (and .env when present).`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsnOverride, "dsn", "", "Database DSN (overrides DB_DSN)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
}

// bootstrap loads config, sets up logging and globals, and opens the database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if dsnOverride != "" {
		cfg.DBDSN = dsnOverride
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	utils.InitLogger(cfg.LogLevel)
	utils.SetJWTSecret(cfg.JWTSecret)
	if err := utils.SetRestaurantLocation(cfg.RestaurantTZ); err != nil {
		return nil, nil, fmt.Errorf("RESTAURANT_TZ: %w", err)
	}

	db, err := database.NewGormDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
