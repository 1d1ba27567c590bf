//go:build linux

package i2cbus

import (
	"fmt"

	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

// linuxTransport adapts a periph.io i2c.BusCloser (opened against a real
// /dev/i2c-N device per the I2C_BUS_<N>_PATH configuration option) to our
// Transport interface. periph.io's Bus.Tx is a single write-then-read
// against one address; a multi-message Transfer is run as a sequence of
// Tx calls against the same already-locked Bus, which is sufficient for
// the devices this gateway drives (none require a combined cross-address
// transaction).
type linuxTransport struct {
	bus interface {
		Tx(addr uint16, w, r []byte) error
		Close() error
	}
}

// OpenLinux opens the I2C bus named by path (e.g. "/dev/i2c-1") using
// periph.io's host drivers and i2creg registry.
func OpenLinux(path string) (*Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("i2cbus: host init: %w", err)
	}
	b, err := i2creg.Open(path)
	if err != nil {
		return nil, fmt.Errorf("i2cbus: open %s: %w", path, err)
	}
	return New(&linuxTransport{bus: b}), nil
}

// Transfer runs msgs in order. A Write immediately followed by a Read to
// the same address (the register-pointer-then-read idiom every device in
// this package uses) is folded into a single combined Tx call so periph.io
// issues it as one repeated-start transaction rather than two separate
// ones with a stop in between.
func (t *linuxTransport) Transfer(msgs []Message) error {
	for i := 0; i < len(msgs); i++ {
		m := msgs[i]
		if m.Dir == Write && i+1 < len(msgs) && msgs[i+1].Dir == Read && msgs[i+1].Addr == m.Addr {
			if err := t.bus.Tx(m.Addr, m.Buf, msgs[i+1].Buf); err != nil {
				return err
			}
			i++
			continue
		}
		switch m.Dir {
		case Write:
			if err := t.bus.Tx(m.Addr, m.Buf, nil); err != nil {
				return err
			}
		case Read:
			if err := t.bus.Tx(m.Addr, nil, m.Buf); err != nil {
				return err
			}
		}
	}
	return nil
}
