package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"pkt.systems/wapploxx/client"
)

func newLocksCommand(app *appConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locks",
		Short: "List and actuate smart locks",
	}
	cmd.AddCommand(
		newLocksListCommand(app),
		newLocksOpenCommand(app),
		newLocksCloseCommand(app),
	)
	return cmd
}

func newLocksListCommand(app *appConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all locks with their live state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := app.newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer cli.Close(ctx)
			locks, err := cli.Locks(ctx)
			if err != nil {
				return describeBlocked(err)
			}
			// One panel-status fetch covers the live columns for every lock.
			status, err := cli.PanelStatus(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCLUSTER\tHWID\tDISABLED\tSTATE")
			for _, l := range locks.All() {
				// Descriptor fields are pre-populated by the listing fetch.
				name, err := l.Name(ctx)
				if err != nil {
					return err
				}
				cluster, err := l.Cluster(ctx)
				if err != nil {
					return err
				}
				hwid, err := l.HwID(ctx)
				if err != nil {
					return err
				}
				isDisabled, err := l.Disabled(ctx)
				if err != nil {
					return err
				}
				state := "closed"
				if seconds, ok := status.AccessTime(l.ID()); ok && seconds > 0 {
					state = fmt.Sprintf("open (%s left)", time.Duration(seconds)*time.Second)
				}
				disabled := ""
				if isDisabled {
					disabled = "yes"
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", l.ID(), name, cluster, hwid, disabled, state)
			}
			return tw.Flush()
		},
	}
}

func newLocksOpenCommand(app *appConfig) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "open [id|name]",
		Short: "Start remote access (unlock) for a lock, or --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActuate(cmd, app, args, all, true)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "open every lock, aborting on the first failure")
	return cmd
}

func newLocksCloseCommand(app *appConfig) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "close [id|name]",
		Short: "Stop remote access (relock) for a lock, or --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActuate(cmd, app, args, all, false)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "close every lock, aborting on the first failure")
	return cmd
}

func runActuate(cmd *cobra.Command, app *appConfig, args []string, all, open bool) error {
	if all == (len(args) == 1) {
		return fmt.Errorf("specify exactly one of a lock id/name or --all")
	}
	cli, err := app.newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer cli.Close(ctx)
	verb := "close"
	if open {
		verb = "open"
	}
	if all {
		locks, err := cli.Locks(ctx)
		if err != nil {
			return describeBlocked(err)
		}
		if open {
			err = locks.OpenAll(ctx)
		} else {
			err = locks.CloseAll(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%sed %d locks\n", verb, locks.Len())
		return nil
	}
	lock, err := resolveLock(ctx, cli, args[0])
	if err != nil {
		return describeBlocked(err)
	}
	if open {
		_, err = lock.Open(ctx)
	} else {
		_, err = lock.Close(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: lock %d\n", verb, lock.ID())
	return nil
}

// resolveLock accepts either a numeric lock id or a (case-insensitive) lock
// name. Names always cost a listing fetch; ids do not.
func resolveLock(ctx context.Context, cli *client.Client, arg string) (*client.Lock, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		return cli.Lock(id), nil
	}
	locks, err := cli.Locks(ctx)
	if err != nil {
		return nil, err
	}
	lock, ok := locks.ByName(arg, false)
	if !ok {
		return nil, fmt.Errorf("no lock named %q", arg)
	}
	return lock, nil
}
