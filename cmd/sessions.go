package cmd

import (
	"fmt"
	"time"

	"github.com/sherine-k/bankqueue/pkg/simulation"
	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	var (
		openingHours string
		count        int
		from         string
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List the upcoming bank openings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("count must be greater than 0")
			}
			hours, err := simulation.ParseOpeningHours(openingHours)
			if err != nil {
				return err
			}

			start := time.Now()
			if from != "" {
				start, err = time.Parse(time.RFC3339, from)
				if err != nil {
					return fmt.Errorf("invalid --from %q: %w", from, err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Next %d opening(s) for %q:\n", count, hours.String())
			for _, t := range hours.Upcoming(start, count) {
				fmt.Fprintf(out, "  %s\n", t.Format("Mon 2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&openingHours, "opening-hours", "0 9 * * 1-5", "Cron expression of the bank openings")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of openings to list")
	cmd.Flags().StringVar(&from, "from", "", "Start listing after this RFC3339 time (default now)")
	return cmd
}
