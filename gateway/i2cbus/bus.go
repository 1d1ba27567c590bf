// Package i2cbus implements the gateway's I2C channel (spec §4.3): an
// owning wrapper over one platform I2C bus, shared behind a mutex by every
// device driver bound to it — the same shape as drvshim.I2C in the
// teacher repo, generalized from a single-adaptor shim to the gateway's
// shared-bus handle.
package i2cbus

import (
	"sync"

	"sensorgate/gateway/gwerr"
)

// Direction of one message within a Transfer.
type Direction uint8

const (
	Write Direction = iota
	Read
)

// Message is one leg of an I2C transaction: a 7-bit address, a direction,
// and the buffer to write from or read into.
type Message struct {
	Addr uint16
	Dir  Direction
	Buf  []byte
}

// Transport is the underlying platform bus. On Linux this is a thin
// wrapper over /dev/i2c-N (ioctl I2C_RDWR); tests supply a fake.
type Transport interface {
	Transfer(msgs []Message) error
}

// Bus owns one physical I2C bus and serializes access to it across every
// device driver that shares the handle (spec §3's I2cBusHandle).
type Bus struct {
	mu   sync.Mutex
	xprt Transport
}

// New wraps xprt. One Bus is constructed per physical bus at startup and
// lives for the process lifetime (spec §3).
func New(xprt Transport) *Bus {
	return &Bus{xprt: xprt}
}

// Transfer performs msgs as one atomic bus transaction. Any number of
// drivers may hold this *Bus; at most one Transfer runs at a time.
func (b *Bus) Transfer(msgs []Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.xprt.Transfer(msgs); err != nil {
		return gwerr.TransportFailure
	}
	return nil
}
