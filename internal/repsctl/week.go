package repsctl

import (
	"fmt"

	"github.com/2beens/weeklyreps/internal/challenge"

	"github.com/spf13/cobra"
)

func newWeekCmd(opts *options) *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the challenge week of a date (default: today)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, setup, err := opts.loadChallenge()
			if err != nil {
				return err
			}

			date := setup.Calendar.Today(opts.now())
			if dateStr != "" {
				date, err = challenge.ParseDate(dateStr)
				if err != nil {
					return err
				}
			}

			week := setup.Calendar.WeekOf(date)
			out := cmd.OutOrStdout()
			if week == challenge.PreBaselineWeek {
				fmt.Fprintf(out, "%s: week %d (before the challenge started on %s)\n",
					date.Format(challenge.DateLayout), week, setup.Calendar.Baseline().Format(challenge.DateLayout))
				return nil
			}

			start, _ := setup.Calendar.WeekStart(week)
			fmt.Fprintf(out, "%s: week %d (started on %s)\n",
				date.Format(challenge.DateLayout), week, start.Format(challenge.DateLayout))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dateStr, "date", "d", "", "date as YYYY-MM-DD")

	return cmd
}
