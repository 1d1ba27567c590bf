// Package gwerr defines the stable error taxonomy shared by the link layer,
// the node registry, and the stub peer.
package gwerr

import "errors"

// Code is a stable, comparable error identifier. It implements error so it
// can be returned (and compared with errors.Is) directly.
type Code string

func (c Code) Error() string { return string(c) }

const (
	// InvalidFrame: malformed on-wire frame (length, missing '*', checksum
	// mismatch, non-hex checksum digits). Recovered locally by the framer.
	InvalidFrame Code = "invalid_frame"

	// ProtocolMismatch: a well-formed frame whose contents violate a
	// higher-level expectation (unknown module, unexpected verb, sensor id
	// mismatch).
	ProtocolMismatch Code = "protocol_mismatch"

	// TransportFailure: write error, read error, I2C bus error, or a timed
	// out wait on a reply.
	TransportFailure Code = "transport_failure"

	// UnknownNode: registry lookup miss.
	UnknownNode Code = "unknown_node"

	// InvalidSensorId: a device-level constraint on the sensor id argument.
	InvalidSensorId Code = "invalid_sensor_id"

	// UnsupportedMeasurement: the node cannot answer this measurement kind.
	UnsupportedMeasurement Code = "unsupported_measurement"

	// ConfigurationError: missing env var, unparseable route parameter,
	// invalid route type. Fatal at startup.
	ConfigurationError Code = "configuration_error"
)

// Of extracts a Code from an error, defaulting to TransportFailure for
// errors that didn't originate in this taxonomy (e.g. raw I/O errors).
func Of(err error) Code {
	if err == nil {
		return ""
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return TransportFailure
}
