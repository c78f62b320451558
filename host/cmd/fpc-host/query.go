package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fpc2534/host/sensor"
	"fpc2534/protocol"
)

var (
	cmdStatus = &cobra.Command{
		Use:   "status",
		Short: "Request the sensor status",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
	cmdVersion = &cobra.Command{
		Use:   "version",
		Short: "Request the firmware version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmdBIST = &cobra.Command{
		Use:   "bist",
		Short: "Run the built-in self test",
		Args:  cobra.NoArgs,
		RunE:  runBIST,
	}
	cmdAbort = &cobra.Command{
		Use:   "abort",
		Short: "Abort the running operation",
		Args:  cobra.NoArgs,
		RunE:  runAbort,
	}
	cmdReset = &cobra.Command{
		Use:   "reset",
		Short: "Reboot the sensor",
		Args:  cobra.NoArgs,
		RunE:  runReset,
	}
	cmdFactoryReset = &cobra.Command{
		Use:   "factory-reset",
		Short: "Erase all templates and configuration",
		Args:  cobra.NoArgs,
		RunE:  runFactoryReset,
	}
	cmdNavigate = &cobra.Command{
		Use:   "navigate [orientation]",
		Short: "Enter navigation mode and print gestures",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runNavigate,
	}
)

var factoryResetYes bool

func init() {
	rootCmd.AddCommand(cmdStatus, cmdVersion, cmdBIST, cmdAbort, cmdReset, cmdFactoryReset, cmdNavigate)
	cmdFactoryReset.Flags().BoolVarP(&factoryResetYes, "yes", "y", false, "Confirm the reset")
}

func printStatus(ev sensor.Event) {
	fmt.Printf("event: %s\n", sensor.EventString(ev.Event))
	fmt.Printf("state: %s (0x%04X)\n", sensor.StateString(ev.State), ev.State)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		ev, err := s.request(ctx, s.sensor.RequestStatus, sensor.KindStatus)
		if err != nil {
			return err
		}
		printStatus(ev)
		return nil
	})
}

func runVersion(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		ev, err := s.request(ctx, s.sensor.RequestVersion, sensor.KindVersion)
		if err != nil {
			return err
		}
		v := ev.Version
		fmt.Printf("version:    %s\n", v.Version)
		fmt.Printf("fw id:      %d\n", v.FwID)
		fmt.Printf("fuse level: %d\n", v.FwFuseLevel)
		fmt.Printf("unique id:  %08X%08X%08X\n", v.MCUUniqueID[0], v.MCUUniqueID[1], v.MCUUniqueID[2])
		return nil
	})
}

func runBIST(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		ev, err := s.request(ctx, s.sensor.StartBuiltInSelfTest, sensor.KindBISTDone)
		if err != nil {
			return err
		}
		if ev.Verdict != 0 {
			return fmt.Errorf("self test failed (verdict %d)", ev.Verdict)
		}
		fmt.Println("self test passed")
		return nil
	})
}

func runAbort(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		ev, err := s.request(ctx, s.sensor.RequestAbort, sensor.KindStatus)
		if err != nil {
			return err
		}
		printStatus(ev)
		return nil
	})
}

func runReset(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(_ context.Context, s *session) error {
		if err := s.sensor.SendReset(); err != nil {
			return err
		}
		fmt.Println("reset sent")
		return nil
	})
}

func runFactoryReset(cmd *cobra.Command, _ []string) error {
	if !factoryResetYes {
		return fmt.Errorf("factory reset erases every template, pass --yes to confirm")
	}
	return withSession(cmd, func(_ context.Context, s *session) error {
		if err := s.sensor.FactoryReset(); err != nil {
			return err
		}
		fmt.Println("factory reset sent")
		return nil
	})
}

func runNavigate(cmd *cobra.Command, args []string) error {
	var orientation uint64
	if len(args) == 1 {
		var err error
		orientation, err = strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return fmt.Errorf("orientation: %w", err)
		}
	}

	return withSessionTimeout(cmd, 0, func(ctx context.Context, s *session) error {
		if err := s.sensor.StartNavigationMode(uint8(orientation)); err != nil {
			return err
		}
		fmt.Println("navigation mode, interrupt to stop")

		_, err := s.await(ctx, func(ev sensor.Event) bool {
			if ev.Kind == sensor.KindNavigation {
				fmt.Println(sensor.GestureString(ev.Gesture))
			}
			return false
		}, nil)
		if ctx.Err() != nil {
			return s.sensor.RequestAbort()
		}
		return err
	})
}

func parseID(arg string) (protocol.IDSelector, error) {
	if arg == "all" {
		return protocol.AllIDs(), nil
	}
	id, err := strconv.ParseUint(arg, 0, 16)
	if err != nil {
		return protocol.IDSelector{}, fmt.Errorf("template id %q: %w", arg, err)
	}
	return protocol.SpecifiedID(uint16(id)), nil
}
