package commands

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

var reconcileDay string

// reconcileCmd re-derives table statuses for one restaurant and day
var reconcileCmd = &cobra.Command{
	Use:   "reconcile RESTAURANT_ID",
	Short: "Recompute table statuses from a day's reservations",
	Long: `Recompute table statuses from a day's reservations.

Examples:
  restaurant-tables reconcile resto-1                  # today
  restaurant-tables reconcile resto-1 --day 2024-06-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}

		day := utils.StartOfDay(time.Now())
		if reconcileDay != "" {
			if day, err = utils.ParseDay(reconcileDay); err != nil {
				return err
			}
		}

		var b services.Broadcaster = hub.Nop{}
		if cfg.RedisURL != "" {
			client := hub.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
			defer client.Close()
			// connected dashboards pick the result up through the relay
			b = hub.NewRedisPublisher(client, "")
		}

		floor := services.NewFloor(db, b)
		result, err := floor.Reconciler.Reconcile(cmd.Context(), args[0], day)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileDay, "day", "", "Day to reconcile (YYYY-MM-DD, restaurant time zone)")
	rootCmd.AddCommand(reconcileCmd)
}
