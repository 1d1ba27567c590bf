// Package node implements the node trait (spec §4.4) and the serial-backed
// node variant. It is shaped after the teacher's Adaptor interface
// (services/hal/internal/halcore.Adaptor) but collapsed to the single
// synchronous capability this gateway's nodes need.
package node

import (
	"context"

	"sensorgate/gateway/measure"
)

// Node is the one capability every logical node implements, regardless of
// whether it is backed by a serial link or a direct I2C device.
type Node interface {
	Measure(ctx context.Context, kind measure.Kind, sensorID uint32) (float32, error)
}
