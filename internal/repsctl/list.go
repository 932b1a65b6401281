package repsctl

import (
	"encoding/csv"
	"fmt"

	"github.com/2beens/weeklyreps/internal/reps"

	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	var person string
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all logged reps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, setup, closeRepo, err := opts.openRepo(cmd.Context())
			if err != nil {
				return err
			}
			defer closeRepo()

			if person != "" {
				if person, err = setup.Person(person); err != nil {
					return err
				}
			}

			records, err := repo.FetchAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch logged reps: %w", err)
			}

			out := cmd.OutOrStdout()
			if asCSV {
				w := csv.NewWriter(out)
				_ = w.Write(reps.Header)
				for _, r := range records {
					if person == "" || r.Person == person {
						_ = w.Write(reps.RecordToRow(r))
					}
				}
				w.Flush()
				return w.Error()
			}

			listed := 0
			for _, r := range records {
				if person != "" && r.Person != person {
					continue
				}
				fmt.Fprintf(out, "%s  week %-3d %-10s %-10s %5d\n", r.Date(), r.WeekIndex, r.Person, r.Exercise, r.Reps)
				listed++
			}
			if listed == 0 {
				fmt.Fprintln(out, "No reps logged yet.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&person, "person", "p", "", "only this person")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print as CSV, in the storage row layout")

	return cmd
}
