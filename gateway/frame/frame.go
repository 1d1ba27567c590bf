// Package frame implements the on-wire $...*XX\r\n framing shared by the
// gateway's serial link worker and the MCU-side stub dispatcher.
package frame

import (
	"sensorgate/gateway/gwerr"
)

const (
	start = '$'
	sep   = '*'
)

var terminator = [2]byte{'\r', '\n'}

// checksum folds every payload byte with XOR, starting from 0.
func checksum(payload []byte) byte {
	var c byte
	for _, b := range payload {
		c ^= b
	}
	return c
}

const hexDigits = "0123456789ABCDEF"

func hex2(b byte) [2]byte {
	return [2]byte{hexDigits[b>>4], hexDigits[b&0xF]}
}

func unhexDigit(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	default:
		return 0, false
	}
}

// Encode builds a complete frame "$<payload>*<HH>\r\n" for a non-empty
// payload. The caller must not pass an empty payload; encoders upstream
// (Submit, the stub's response sink) always have at least a transaction id
// to write.
func Encode(payload []byte) []byte {
	cs := hex2(checksum(payload))
	out := make([]byte, 0, len(payload)+5)
	out = append(out, start)
	out = append(out, payload...)
	out = append(out, sep)
	out = append(out, cs[0], cs[1])
	out = append(out, terminator[0], terminator[1])
	return out
}

// Decode validates and strips the checksum suffix from a raw payload that
// has already had its leading '$' and trailing "\r\n" removed by the
// framer. It returns the inner payload on success.
func Decode(raw []byte) ([]byte, error) {
	n := len(raw)
	if n < 4 {
		return nil, gwerr.InvalidFrame
	}
	if raw[n-3] != sep {
		return nil, gwerr.InvalidFrame
	}
	hi, ok1 := unhexDigit(raw[n-2])
	lo, ok2 := unhexDigit(raw[n-1])
	if !ok1 || !ok2 {
		return nil, gwerr.InvalidFrame
	}
	want := hi<<4 | lo
	payload := raw[:n-3]
	if checksum(payload) != want {
		return nil, gwerr.InvalidFrame
	}
	return payload, nil
}
