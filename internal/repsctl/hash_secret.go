package repsctl

import (
	"fmt"

	"github.com/2beens/weeklyreps/pkg"

	"github.com/spf13/cobra"
)

// the printed hash goes into WEEKLYREPS_SUBMIT_SECRET_HASH
func newHashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret <secret>",
		Short: "Print the bcrypt hash of a submission secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := pkg.HashSecret(args[0])
			if err != nil {
				return fmt.Errorf("hash secret: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
