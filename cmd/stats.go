package cmd

import (
	"encoding/json"
	"fmt"

	"course-dashboard/config"
	"course-dashboard/monitoring"

	"github.com/pocketbase/pocketbase"
	"github.com/spf13/cobra"
)

// newStatsCommand prints one load cycle as JSON without starting the server.
func newStatsCommand(app *pocketbase.PocketBase, cfg *config.Config) *cobra.Command {
	var (
		pretty   bool
		upcoming bool
		compact  bool
	)

	command := &cobra.Command{
		Use:   "stats",
		Short: "Load the dashboard once and print it as JSON",
		Long: `Load the five dashboard collections once and print the derived figures.

Examples:
  course-dashboard stats --pretty
  course-dashboard stats --upcoming --compact`,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, args []string) error {
			svc, err := newDashboardService(app, cfg, nil, monitoring.NewMonitor())
			if err != nil {
				return err
			}

			state, err := svc.Load(command.Context())
			if err != nil {
				return fmt.Errorf("stats: %w", err)
			}

			var out any = state
			if upcoming {
				out = svc.Upcoming(compact)
			}

			enc := json.NewEncoder(command.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(out)
		},
	}

	command.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	command.Flags().BoolVar(&upcoming, "upcoming", false, "print only the upcoming courses")
	command.Flags().BoolVar(&compact, "compact", false, "use the compact upcoming limit (with --upcoming)")

	return command
}
