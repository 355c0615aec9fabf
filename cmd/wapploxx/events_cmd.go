package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"pkt.systems/wapploxx/api"
)

var eventTypes = map[string]api.EventType{
	"all":       api.EventAll,
	"access":    api.EventAccess,
	"armdisarm": api.EventArmDisarm,
	"record":    api.EventRecord,
	"system":    api.EventSystem,
}

func newEventsCommand(app *appConfig) *cobra.Command {
	var (
		index     int
		count     int
		eventType string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Fetch a page of the controller event log as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := eventTypes[eventType]
			if !ok {
				return fmt.Errorf("invalid event type %q (all|access|armdisarm|record|system)", eventType)
			}
			cli, err := app.newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			defer cli.Close(ctx)
			log, err := cli.EventLog(ctx, index, count, typ)
			if err != nil {
				return describeBlocked(err)
			}
			// The entry schema varies per firmware; emit the payload as-is.
			fmt.Fprintln(cmd.OutOrStdout(), string(log.Raw))
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", 0, "first entry to fetch")
	cmd.Flags().IntVar(&count, "count", 50, "number of entries to fetch")
	cmd.Flags().StringVar(&eventType, "type", "all", "event type filter (all|access|armdisarm|record|system)")
	return cmd
}
