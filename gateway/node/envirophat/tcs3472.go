package envirophat

import (
	"context"
	"encoding/binary"
	"time"

	"sensorgate/gateway/i2cbus"
)

// tcs3472Addr is the EnviroPHat's fixed light/color sensor address.
const tcs3472Addr uint16 = 0x29

// Command register bits (ams TCS3472 datasheet §3.2): bit 7 selects
// command mode, bits 6:5 select the transaction type (auto-increment
// protocol for a multi-byte burst read).
const (
	cmdBit      = 0x80
	cmdAutoInc  = 0x20
	regEnable   = 0x00
	regATime    = 0x01
	regControl  = 0x0F
	regCDataL   = 0x14 // clear(2) + red(2) + green(2) + blue(2), burst read
	enablePON   = 0x01
	enableAEN   = 0x02
	integration = 700 // longest integration time in ms (ATIME=0x00); newTCS3472 programs ATIME=0xC0
)

type tcs3472 struct {
	bus *i2cbus.Bus
}

func newTCS3472(bus *i2cbus.Bus) (*tcs3472, error) {
	t := &tcs3472{bus: bus}
	if err := t.writeReg(regEnable, enablePON); err != nil {
		return nil, err
	}
	time.Sleep(3 * time.Millisecond) // datasheet: wait for oscillator after PON
	if err := t.writeReg(regATime, 0xC0); err != nil {
		return nil, err
	}
	if err := t.writeReg(regControl, 0x00); err != nil { // 1x gain
		return nil, err
	}
	if err := t.writeReg(regEnable, enablePON|enableAEN); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *tcs3472) writeReg(reg, val byte) error {
	return t.bus.Transfer([]i2cbus.Message{
		{Addr: tcs3472Addr, Dir: i2cbus.Write, Buf: []byte{cmdBit | reg, val}},
	})
}

// read waits out the configured integration time and returns the raw
// clear-channel count as a float (spec §4.5: light_level); it is not
// converted to lux.
func (t *tcs3472) read(ctx context.Context) (float32, error) {
	select {
	case <-time.After(180 * time.Millisecond): // ATIME=0xC0 -> 64 cycles x 2.4ms = ~154ms integration
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	raw := make([]byte, 8)
	if err := t.bus.Transfer([]i2cbus.Message{
		{Addr: tcs3472Addr, Dir: i2cbus.Write, Buf: []byte{cmdBit | cmdAutoInc | regCDataL}},
		{Addr: tcs3472Addr, Dir: i2cbus.Read, Buf: raw},
	}); err != nil {
		return 0, err
	}

	clear := binary.LittleEndian.Uint16(raw[0:2])
	return float32(clear), nil
}
