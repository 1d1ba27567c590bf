package envirophat

import (
	"context"
	"encoding/binary"
	"time"

	"sensorgate/gateway/i2cbus"
)

// bmp280Addr is the EnviroPHat's fixed pressure/temperature sensor address.
const bmp280Addr uint16 = 0x77

// Register map (Bosch BMP280 datasheet §4.3).
const (
	regCalibStart = 0x88 // 12 calibration words, 0x88-0x9F
	regCalibLen   = 24
	regChipID     = 0xD0
	regReset      = 0xE0
	regStatus     = 0xF3
	regCtrlMeas   = 0xF4
	regConfig     = 0xF5
	regPressMSB   = 0xF7 // press(3) + temp(3) = 6 bytes, burst read
)

const bmp280ChipID = 0x58

// bmp280Calib holds the factory-programmed compensation words read once at
// construction (datasheet §3.11.2).
type bmp280Calib struct {
	dT1 uint16
	dT2 int16
	dT3 int16
	dP1 uint16
	dP2 int16
	dP3 int16
	dP4 int16
	dP5 int16
	dP6 int16
	dP7 int16
	dP8 int16
	dP9 int16
}

type bmp280 struct {
	bus   *i2cbus.Bus
	cfg   Config
	calib bmp280Calib
}

func newBMP280(bus *i2cbus.Bus, cfg Config) (*bmp280, error) {
	id := make([]byte, 1)
	if err := bus.Transfer([]i2cbus.Message{
		{Addr: bmp280Addr, Dir: i2cbus.Write, Buf: []byte{regChipID}},
		{Addr: bmp280Addr, Dir: i2cbus.Read, Buf: id},
	}); err != nil {
		return nil, err
	}

	raw := make([]byte, regCalibLen)
	if err := bus.Transfer([]i2cbus.Message{
		{Addr: bmp280Addr, Dir: i2cbus.Write, Buf: []byte{regCalibStart}},
		{Addr: bmp280Addr, Dir: i2cbus.Read, Buf: raw},
	}); err != nil {
		return nil, err
	}

	d := &bmp280{bus: bus, cfg: cfg, calib: decodeCalib(raw)}

	config := byte(cfg.StandbyTime)<<5 | byte(cfg.IIRCoeff)<<2
	ctrlMeas := byte(cfg.OversampTemp)<<5 | byte(cfg.OversampPres)<<2 | byte(PowerNormal)
	if err := bus.Transfer([]i2cbus.Message{
		{Addr: bmp280Addr, Dir: i2cbus.Write, Buf: []byte{regConfig, config}},
	}); err != nil {
		return nil, err
	}
	if err := bus.Transfer([]i2cbus.Message{
		{Addr: bmp280Addr, Dir: i2cbus.Write, Buf: []byte{regCtrlMeas, ctrlMeas}},
	}); err != nil {
		return nil, err
	}
	return d, nil
}

func decodeCalib(raw []byte) bmp280Calib {
	u16 := func(off int) uint16 { return binary.LittleEndian.Uint16(raw[off:]) }
	s16 := func(off int) int16 { return int16(u16(off)) }
	return bmp280Calib{
		dT1: u16(0),
		dT2: s16(2),
		dT3: s16(4),
		dP1: u16(6),
		dP2: s16(8),
		dP3: s16(10),
		dP4: s16(12),
		dP5: s16(14),
		dP6: s16(16),
		dP7: s16(18),
		dP8: s16(20),
		dP9: s16(22),
	}
}

// read triggers a forced-mode conversion, waits out the datasheet's
// conversion time for the configured oversampling, and returns
// compensated pressure (Pa) and temperature (deg C).
func (d *bmp280) read(ctx context.Context) (pressure, temperature float32, err error) {
	ctrlMeas := byte(d.cfg.OversampTemp)<<5 | byte(d.cfg.OversampPres)<<2 | byte(PowerForced)
	if err := d.bus.Transfer([]i2cbus.Message{
		{Addr: bmp280Addr, Dir: i2cbus.Write, Buf: []byte{regCtrlMeas, ctrlMeas}},
	}); err != nil {
		return 0, 0, err
	}

	select {
	case <-time.After(conversionTime(d.cfg)):
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}

	raw := make([]byte, 6)
	if err := d.bus.Transfer([]i2cbus.Message{
		{Addr: bmp280Addr, Dir: i2cbus.Write, Buf: []byte{regPressMSB}},
		{Addr: bmp280Addr, Dir: i2cbus.Read, Buf: raw},
	}); err != nil {
		return 0, 0, err
	}

	rawPress := int32(raw[0])<<12 | int32(raw[1])<<4 | int32(raw[2])>>4
	rawTemp := int32(raw[3])<<12 | int32(raw[4])<<4 | int32(raw[5])>>4

	t, tFine := d.calib.compensateTemp(rawTemp)
	p := d.calib.compensatePress(rawPress, tFine)
	return p, t, nil
}

// conversionTime approximates the datasheet's worst-case measurement time
// (§3.8.1) for the configured oversampling pair, plus headroom.
func conversionTime(cfg Config) time.Duration {
	osrsT := int(cfg.OversampTemp)
	osrsP := int(cfg.OversampPres)
	ms := 1.25
	if osrsT > 0 {
		ms += 2.3 * float64(int(1)<<uint(osrsT-1))
	}
	if osrsP > 0 {
		ms += 2.3*float64(int(1)<<uint(osrsP-1)) + 0.575
	}
	return time.Duration(ms*1.5) * time.Millisecond
}

// compensateTemp implements the Bosch reference fixed-point-to-float
// compensation formula (datasheet §3.11.3, compensate_T_double).
func (c bmp280Calib) compensateTemp(raw int32) (celsius float32, tFine float64) {
	v1 := (float64(raw)/16384.0 - float64(c.dT1)/1024.0) * float64(c.dT2)
	v2 := (float64(raw)/131072.0 - float64(c.dT1)/8192.0) * (float64(raw)/131072.0 - float64(c.dT1)/8192.0) * float64(c.dT3)
	tFine = v1 + v2
	return float32(tFine / 5120.0), tFine
}

// compensatePress implements the Bosch reference compensate_P_double
// formula, which depends on the fine temperature value from the same
// reading.
func (c bmp280Calib) compensatePress(raw int32, tFine float64) float32 {
	v1 := tFine/2.0 - 64000.0
	v2 := v1 * v1 * float64(c.dP6) / 32768.0
	v2 += v1 * float64(c.dP5) * 2.0
	v2 = v2/4.0 + float64(c.dP4)*65536.0
	v1 = (float64(c.dP3)*v1*v1/524288.0 + float64(c.dP2)*v1) / 524288.0
	v1 = (1.0 + v1/32768.0) * float64(c.dP1)
	if v1 == 0 {
		return 0
	}
	p := 1048576.0 - float64(raw)
	p = (p - v2/4096.0) * 6250.0 / v1
	v1 = float64(c.dP9) * p * p / 2147483648.0
	v2 = p * float64(c.dP8) / 32768.0
	p += (v1 + v2 + float64(c.dP7)) / 16.0
	return float32(p)
}
