package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"pkt.systems/wapploxx/client"
)

func newLoginCommand(app *appConfig) *cobra.Command {
	var ignoreBlock bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against the controller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := app.newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if remaining := cli.IPBlockRemaining(); remaining > 0 && !ignoreBlock {
				expiry := time.Now().Add(remaining)
				return fmt.Errorf("login blocked by the controller, expires %s; pass --ignore-ip-block if your IP has changed", humanize.Time(expiry))
			}
			var opts []client.LoginOption
			if ignoreBlock {
				opts = append(opts, client.IgnoringIPBlock())
			}
			if _, err := cli.Login(ctx, opts...); err != nil {
				return describeBlocked(err)
			}
			defer cli.Close(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "login ok")
			return nil
		},
	}
	cmd.Flags().BoolVar(&ignoreBlock, "ignore-ip-block", false, "attempt login even while a lockout record is active")
	return cmd
}
