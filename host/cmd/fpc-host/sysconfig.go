package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fpc2534/host/config"
	"fpc2534/host/sensor"
	"fpc2534/protocol"
)

var (
	cmdConfig = &cobra.Command{
		Use:   "config",
		Short: "Read or write the sensor system configuration",
	}
	cmdConfigGet = &cobra.Command{
		Use:   "get",
		Short: "Print the configuration as an HCL system_config block",
		Args:  cobra.NoArgs,
		RunE:  runConfigGet,
	}
	cmdConfigSet = &cobra.Command{
		Use:   "set",
		Short: "Write the system_config block of the selected sensor",
		Args:  cobra.NoArgs,
		RunE:  runConfigSet,
	}
)

var configDefault bool

func init() {
	rootCmd.AddCommand(cmdConfig)
	cmdConfig.AddCommand(cmdConfigGet, cmdConfigSet)
	cmdConfigGet.Flags().BoolVar(&configDefault, "default", false, "Read the factory defaults instead of the active configuration")
}

func runConfigGet(cmd *cobra.Command, _ []string) error {
	configType := protocol.SysConfigTypeCustom
	if configDefault {
		configType = protocol.SysConfigTypeDefault
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		ev, err := s.request(ctx, func() error {
			return s.sensor.RequestGetSystemConfig(configType)
		}, sensor.KindSystemConfig)
		if err != nil {
			return err
		}
		os.Stdout.Write(config.FromSystemConfig(ev.Config).Encode())
		return nil
	})
}

func runConfigSet(cmd *cobra.Command, _ []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if s.schema.SystemConfig == nil {
			return fmt.Errorf("sensor %q has no system_config block", s.schema.Name)
		}
		cfg, err := s.schema.SystemConfig.SystemConfig()
		if err != nil {
			return err
		}

		_, err = s.request(ctx, func() error {
			return s.sensor.SetSystemConfig(cfg)
		}, sensor.KindStatus, sensor.KindSystemConfig)
		if err != nil {
			return err
		}
		fmt.Println("configuration written")
		return nil
	})
}
