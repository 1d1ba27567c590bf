// Package measure defines the closed set of measurement kinds the gateway
// understands (spec §3's MeasurementKind) and the wire-protocol strings
// that name them in frames, URL parameters, and persisted records.
package measure

// Kind is one of the four measurement kinds the gateway fleet exposes.
type Kind string

const (
	Pressure    Kind = "pressure"
	Temperature Kind = "temperature"
	Humidity    Kind = "humidity"
	LightLevel  Kind = "light_level"
)

// All lists every kind in a stable order, for inventory/structure
// endpoints and the fetcher's sweep.
var All = [...]Kind{Pressure, Temperature, Humidity, LightLevel}

// ParseKind accepts exactly the canonical lowercase string forms.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case Pressure, Temperature, Humidity, LightLevel:
		return Kind(s), true
	default:
		return "", false
	}
}

func (k Kind) String() string { return string(k) }

// verb is the METEO module verb used to request this kind over the serial
// link (spec §4.4).
func (k Kind) verb() string {
	switch k {
	case Pressure:
		return "GET_PRESSURE"
	case Temperature:
		return "GET_TEMPERATURE"
	case Humidity:
		return "GET_HUMIDITY"
	case LightLevel:
		return "GET_LIGHT_LEVEL"
	default:
		return ""
	}
}

// replyTag is the prefix of a well-formed measurement reply for this kind,
// e.g. "TEMPERATURE_REPLY" (spec §6).
func (k Kind) replyTag() string {
	switch k {
	case Pressure:
		return "PRESSURE_REPLY"
	case Temperature:
		return "TEMPERATURE_REPLY"
	case Humidity:
		return "HUMIDITY_REPLY"
	case LightLevel:
		return "LIGHT_LEVEL_REPLY"
	default:
		return ""
	}
}

// Verb exposes the METEO verb for encoders outside this package (the
// serial node and the stub's meteo module both need it).
func (k Kind) Verb() string { return k.verb() }

// ReplyTag exposes the reply-payload tag for encoders/decoders outside
// this package.
func (k Kind) ReplyTag() string { return k.replyTag() }

// KindFromReplyTag inverts ReplyTag, for the serial node's reply parser.
func KindFromReplyTag(tag string) (Kind, bool) {
	for _, k := range All {
		if k.replyTag() == tag {
			return k, true
		}
	}
	return "", false
}
