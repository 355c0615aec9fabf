package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"pkt.systems/wapploxx/api"
	"pkt.systems/wapploxx/client"
)

func newStatusCommand(app *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the panel state and per-lock remote-access times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := app.newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer cli.Close(ctx)
			status, err := cli.PanelStatus(ctx)
			if err != nil {
				return describeBlocked(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "panel: %s\n", status.State())
			for i, id := range status.AvailableLoxx {
				seconds := 0
				if i < len(status.RemoteAccessTime) {
					seconds = status.RemoteAccessTime[i]
				}
				state := "closed"
				if seconds > 0 {
					state = fmt.Sprintf("open for another %s", time.Duration(seconds)*time.Second)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "lock %s: %s\n", id, state)
			}
			return nil
		},
	}
}

func newArmCommand(app *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "arm",
		Short: "Arm the panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetPanel(cmd, app, api.PanelArm)
		},
	}
}

func newDisarmCommand(app *appConfig) *cobra.Command {
	var forced bool
	cmd := &cobra.Command{
		Use:   "disarm",
		Short: "Disarm the panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			action := api.PanelDisarm
			if forced {
				action = api.PanelForcedDisarm
			}
			return runSetPanel(cmd, app, action)
		},
	}
	cmd.Flags().BoolVar(&forced, "forced", false, "disarm even while an alarm is active")
	return cmd
}

func runSetPanel(cmd *cobra.Command, app *appConfig, action api.PanelAction) error {
	cli, err := app.newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer cli.Close(ctx)
	res, err := cli.SetPanel(ctx, action)
	if err != nil {
		return describeBlocked(err)
	}
	if !res.OK() {
		return fmt.Errorf("%s rejected: %s", action, res.ErrMsg)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", action, res.Status)
	return nil
}

// describeBlocked rewrites an IP-block failure with the expiry spelled out;
// other errors pass through unchanged.
func describeBlocked(err error) error {
	var blocked *client.IPBlockedError
	if errors.As(err, &blocked) {
		expiry := time.Now().Add(blocked.Remaining)
		return fmt.Errorf("login blocked by the controller, expires %s (%s); use --help for the ip-block options", humanize.Time(expiry), expiry.Format(time.Kitchen))
	}
	return err
}
