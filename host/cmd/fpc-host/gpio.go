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
	cmdGPIO = &cobra.Command{
		Use:   "gpio",
		Short: "Read or drive a module GPIO",
	}
	cmdGPIOGet = &cobra.Command{
		Use:   "get <pin>",
		Short: "Read a pin",
		Args:  cobra.ExactArgs(1),
		RunE:  runGPIOGet,
	}
	cmdGPIOSet = &cobra.Command{
		Use:   "set <pin> <mode> <state>",
		Short: "Configure a pin (mode: push-pull, open-drain, input, pull-up, pull-down)",
		Args:  cobra.ExactArgs(3),
		RunE:  runGPIOSet,
	}
	cmdLED = &cobra.Command{
		Use:       "led <on|off>",
		Short:     "Switch the module LED",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE:      runLED,
	}
)

var gpioModes = map[string]uint8{
	"push-pull":  protocol.GPIOModeOutputPushPull,
	"open-drain": protocol.GPIOModeOutputOpenDrain,
	"input":      protocol.GPIOModeInputPullNone,
	"pull-up":    protocol.GPIOModeInputPullUp,
	"pull-down":  protocol.GPIOModeInputPullDown,
}

func init() {
	rootCmd.AddCommand(cmdGPIO, cmdLED)
	cmdGPIO.AddCommand(cmdGPIOGet, cmdGPIOSet)
}

func parseUint8(name, arg string) (uint8, error) {
	v, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, arg, err)
	}
	return uint8(v), nil
}

func runGPIOGet(cmd *cobra.Command, args []string) error {
	pin, err := parseUint8("pin", args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *session) error {
		ev, err := s.request(ctx, func() error {
			return s.sensor.RequestGetGPIO(pin)
		}, sensor.KindGPIOControl)
		if err != nil {
			return err
		}
		fmt.Printf("pin %d: %d\n", pin, ev.Pin)
		return nil
	})
}

func runGPIOSet(cmd *cobra.Command, args []string) error {
	pin, err := parseUint8("pin", args[0])
	if err != nil {
		return err
	}
	mode, ok := gpioModes[args[1]]
	if !ok {
		if mode, err = parseUint8("mode", args[1]); err != nil {
			return err
		}
	}
	state, err := parseUint8("state", args[2])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		_, err := s.request(ctx, func() error {
			return s.sensor.RequestSetGPIO(pin, mode, state)
		}, sensor.KindGPIOControl, sensor.KindStatus)
		return err
	})
}

func runLED(cmd *cobra.Command, args []string) error {
	var on bool
	switch args[0] {
	case "on":
		on = true
	case "off":
	default:
		return fmt.Errorf("led state %q: want on or off", args[0])
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		_, err := s.request(ctx, func() error {
			return s.sensor.SetLED(on)
		}, sensor.KindGPIOControl, sensor.KindStatus)
		return err
	})
}
