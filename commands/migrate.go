package commands

import (
	"github.com/spf13/cobra"
	"github.com/yeremiapane/restaurant-tables/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the tables and reservations schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		return database.Migrate(db)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
