package repsctl

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogCmd(opts *options) *cobra.Command {
	var person, exercise string
	var repsDone int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log reps for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, setup, closeRepo, err := opts.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			record, err := setup.NewRecord(person, exercise, repsDone, opts.now())
			if err != nil {
				return err
			}
			if err := repo.Append(cmd.Context(), record); err != nil {
				return fmt.Errorf("save reps: %w", err)
			}

			displayName := record.Exercise
			if target, ok := setup.Targets.Get(record.Exercise); ok {
				displayName = target.DisplayName
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s – %d x %s on %s (week %d)\n",
				record.Person, record.Reps, displayName, record.Date(), record.WeekIndex)
			return nil
		},
	}
	cmd.Flags().StringVarP(&person, "person", "p", "", "person from the roster")
	cmd.Flags().StringVarP(&exercise, "exercise", "x", "", "exercise key or display name")
	cmd.Flags().IntVarP(&repsDone, "reps", "r", 0, "number of reps, at least 1")
	_ = cmd.MarkFlagRequired("person")
	_ = cmd.MarkFlagRequired("exercise")
	_ = cmd.MarkFlagRequired("reps")

	return cmd
}
