package main

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "fpc-host",
		Short:         "Drive an FPC2534 fingerprint sensor.",
		Long:          ``,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

var rootConf string
var rootSensor string
var rootDevice string
var rootTransport string
var rootBaud int
var rootIRQGPIO int
var rootCSGPIO int
var rootDebug bool
var rootMetrics string
var rootTimeout time.Duration
var rootPoll time.Duration

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootConf, "conf", "c", "", "Sensor configuration file (HCL)")
	rootCmd.PersistentFlags().StringVarP(&rootSensor, "sensor", "s", "", "Sensor name in the configuration file")
	rootCmd.PersistentFlags().StringVarP(&rootDevice, "device", "D", "/dev/ttyACM0", "Device path when no configuration file is given")
	rootCmd.PersistentFlags().StringVarP(&rootTransport, "transport", "t", "uart", "Transport when no configuration file is given (uart, i2c, spi)")
	rootCmd.PersistentFlags().IntVarP(&rootBaud, "baud", "b", 0, "UART baud rate (0 = sensor default)")
	rootCmd.PersistentFlags().IntVar(&rootIRQGPIO, "irq-gpio", -1, "Sensor IRQ line as a sysfs GPIO number")
	rootCmd.PersistentFlags().IntVar(&rootCSGPIO, "cs-gpio", -1, "SPI chip select as a sysfs GPIO number")
	rootCmd.PersistentFlags().BoolVarP(&rootDebug, "debug", "d", false, "Debug logging (trace)")
	rootCmd.PersistentFlags().StringVarP(&rootMetrics, "metrics", "m", "", "Prom metrics address")
	rootCmd.PersistentFlags().DurationVarP(&rootTimeout, "timeout", "T", 10*time.Second, "How long to wait for a response")
	rootCmd.PersistentFlags().DurationVar(&rootPoll, "poll", 5*time.Millisecond, "Response poll interval")
}
