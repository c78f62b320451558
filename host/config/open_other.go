//go:build !linux

package config

import (
	"fmt"

	"github.com/loopholelabs/logging/types"

	"fpc2534/host/comm"
)

func openBus(ss *SensorSchema, _ types.Logger, _ []comm.Option) (*Device, error) {
	return nil, fmt.Errorf("%s transport needs linux i2c-dev/spidev", ss.Transport)
}
