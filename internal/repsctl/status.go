package repsctl

import (
	"fmt"
	"strings"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/reps"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *options) *cobra.Command {
	var person string
	var week int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the week status of everyone, or of one person",
		Long: `Show how far people got with the weekly targets. Without --week the
current week is used: the highest week that has any logged reps.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, setup, closeRepo, err := opts.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			people := setup.Roster
			if person != "" {
				p, err := setup.Person(person)
				if err != nil {
					return err
				}
				people = []string{p}
			}

			var stats reps.FetchStats
			records, err := repo.FetchAll(reps.WithFetchStats(cmd.Context(), &stats))
			if err != nil {
				return fmt.Errorf("fetch logged reps: %w", err)
			}
			if !cmd.Flags().Changed("week") {
				week = challenge.CurrentWeek(records)
			}
			if week < challenge.PreBaselineWeek {
				return fmt.Errorf("invalid week: %d", week)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Week %d\n", week)
			skipped := 0
			for _, p := range people {
				status := challenge.Evaluate(records, p, week, setup.Targets)
				skipped = status.Skipped + stats.MalformedRows()

				verdict := "week not completed"
				if status.WeekCompleted {
					verdict = "week completed"
				}
				fmt.Fprintf(out, "\n  %s: %s\n", p, verdict)
				fmt.Fprintln(out, "  "+strings.Repeat("-", 40))
				for _, ex := range status.Ordered(setup.Targets) {
					fmt.Fprintf(out, "  %-12s %5d / %-5d %3.0f%%\n", ex.DisplayName, ex.RepsDone, ex.Target, ex.Progress*100)
				}
			}
			printDiagnostic(out, skipped)

			return nil
		},
	}
	cmd.Flags().StringVarP(&person, "person", "p", "", "only this person")
	cmd.Flags().IntVarP(&week, "week", "w", 0, "week index (default: current week)")

	return cmd
}
