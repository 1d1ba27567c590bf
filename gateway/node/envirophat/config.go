package envirophat

// StandbyTime selects the BMP280's t_standby field (config register,
// bits 7:5) for normal-mode sampling.
type StandbyTime uint8

const (
	Standby0_5ms StandbyTime = 0
	Standby62ms  StandbyTime = 1
	Standby125ms StandbyTime = 2
	Standby250ms StandbyTime = 3
	Standby500ms StandbyTime = 4
	Standby1s    StandbyTime = 5
	Standby2s    StandbyTime = 6
	Standby4s    StandbyTime = 7
)

// IIRCoefficient selects the BMP280's IIR filter coefficient (config
// register, bits 4:2).
type IIRCoefficient uint8

const (
	IIRCoeffOff IIRCoefficient = 0
	IIRCoeff2   IIRCoefficient = 1
	IIRCoeff4   IIRCoefficient = 2
	IIRCoeff8   IIRCoefficient = 3
	IIRCoeff16  IIRCoefficient = 4
)

// Oversampling selects a per-channel oversampling setting (ctrl_meas
// register).
type Oversampling uint8

const (
	OversamplingSkip Oversampling = 0
	Oversampling1x   Oversampling = 1
	Oversampling2x   Oversampling = 2
	Oversampling4x   Oversampling = 3
	Oversampling8x   Oversampling = 4
	Oversampling16x  Oversampling = 5
)

// PowerMode selects the BMP280's power mode (ctrl_meas register, bits 1:0).
type PowerMode uint8

const (
	PowerSleep  PowerMode = 0
	PowerForced PowerMode = 1
	PowerNormal PowerMode = 3
)
