package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	cmdMonitor = &cobra.Command{
		Use:   "monitor",
		Short: "Print every event the sensor reports until interrupted",
		Args:  cobra.NoArgs,
		RunE:  runMonitor,
	}
)

var monitorStatus bool

func init() {
	rootCmd.AddCommand(cmdMonitor)
	cmdMonitor.Flags().BoolVar(&monitorStatus, "status", true, "Request a status frame on start")
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	return withSessionTimeout(cmd, 0, func(ctx context.Context, s *session) error {
		if monitorStatus {
			if err := s.sensor.RequestStatus(); err != nil {
				return err
			}
		}

		ticker := time.NewTicker(rootPoll)
		defer ticker.Stop()
		for {
			if err := s.pump(); err != nil {
				return err
			}

		drain:
			for {
				select {
				case ev := <-s.events:
					fmt.Printf("%s %s\n", time.Now().Format("15:04:05.000"), ev)
				default:
					break drain
				}
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
}
