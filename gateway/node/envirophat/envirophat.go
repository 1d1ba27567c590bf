// Package envirophat implements the I2C-backed EnviroPHat node (spec
// §4.5): a composite of a BMP280-family pressure/temperature sensor and a
// TCS3472-family light/color sensor, both bound to one shared I2C bus
// handle. Shaped after the teacher's per-device driver packages
// (services/hal/internal/devices/aht20), generalized from the HAL's
// split-phase Trigger/Collect cycle to this gateway's single synchronous
// Measure call.
package envirophat

import (
	"context"

	"sensorgate/gateway/gwerr"
	"sensorgate/gateway/i2cbus"
	"sensorgate/gateway/measure"
)

// Config holds the BMP280-side tuning parameters named in spec §4.5.
type Config struct {
	StandbyTime  StandbyTime
	IIRCoeff     IIRCoefficient
	OversampPres Oversampling
	OversampTemp Oversampling
	PowerMode    PowerMode
}

// DefaultConfig matches the EnviroPHat's stock wiring: normal power mode,
// light filtering, and modest oversampling.
func DefaultConfig() Config {
	return Config{
		StandbyTime:  Standby62ms,
		IIRCoeff:     IIRCoeff4,
		OversampPres: Oversampling4x,
		OversampTemp: Oversampling1x,
		PowerMode:    PowerNormal,
	}
}

// Node is the EnviroPHat logical node. Sensor id must be 0; pressure and
// temperature share one BMP280 read, light level uses the TCS3472.
type Node struct {
	pt    *bmp280
	light *tcs3472
}

// New builds an EnviroPHat node bound to bus, configuring both onboard
// devices per cfg.
func New(bus *i2cbus.Bus, cfg Config) (*Node, error) {
	pt, err := newBMP280(bus, cfg)
	if err != nil {
		return nil, err
	}
	lt, err := newTCS3472(bus)
	if err != nil {
		return nil, err
	}
	return &Node{pt: pt, light: lt}, nil
}

func (n *Node) Measure(ctx context.Context, kind measure.Kind, sensorID uint32) (float32, error) {
	if sensorID != 0 {
		return 0, gwerr.InvalidSensorId
	}
	switch kind {
	case measure.Pressure:
		p, _, err := n.pt.read(ctx)
		return p, err
	case measure.Temperature:
		_, t, err := n.pt.read(ctx)
		return t, err
	case measure.LightLevel:
		return n.light.read(ctx)
	case measure.Humidity:
		return 0, gwerr.UnsupportedMeasurement
	default:
		return 0, gwerr.UnsupportedMeasurement
	}
}
