package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSystemCommand(app *appConfig) *cobra.Command {
	var pauseAutoLogout bool
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Fetch controller system status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := app.newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer cli.Close(ctx)
			status, err := cli.SystemStatus(ctx, pauseAutoLogout)
			if err != nil {
				return describeBlocked(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(status.Raw))
			return nil
		},
	}
	cmd.Flags().BoolVar(&pauseAutoLogout, "pause-auto-logout", true, "ask the firmware to keep the session alive")
	return cmd
}
