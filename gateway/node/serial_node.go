package node

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"sensorgate/gateway/gwerr"
	"sensorgate/gateway/measure"
)

// LinkSubmitter is the subset of linkio.Handle a SerialNode needs. Nodes
// depend on this interface rather than the concrete handle so the
// transaction engine can be faked out in tests.
type LinkSubmitter interface {
	Submit(ctx context.Context, nodeID uint32, payload []byte) ([]byte, error)
}

// SerialNode is the serial-backed logical node (spec §4.4): it holds its
// public id (used as the frame's node-id field) and a shared link handle.
// Any number of SerialNodes may share one Handle when they route through
// the same physical port.
type SerialNode struct {
	publicID uint32
	link     LinkSubmitter
}

// NewSerialNode builds a serial-backed node bound to publicID, routed
// through link.
func NewSerialNode(publicID uint32, link LinkSubmitter) *SerialNode {
	return &SerialNode{publicID: publicID, link: link}
}

// Measure encodes the METEO request for kind/sensorID, submits it on the
// shared link, and validates the reply per spec §4.4: the reply kind must
// match the request and the returned sensor id must match too.
func (n *SerialNode) Measure(ctx context.Context, kind measure.Kind, sensorID uint32) (float32, error) {
	verb := kind.Verb()
	if verb == "" {
		return 0, gwerr.UnsupportedMeasurement
	}
	payload := fmt.Appendf(nil, "METEO,%s,%d", verb, sensorID)

	reply, err := n.link.Submit(ctx, n.publicID, payload)
	if err != nil {
		return 0, err
	}
	return parseMeteoReply(reply, kind, sensorID)
}

// parseMeteoReply accepts "METEO,<KIND>_REPLY,<sensor-id>,<float>" or
// "METEO,RET_VAL,<int>" (spec §4.4). A RET_VAL returned where a
// measurement was expected, or any mismatch, is a ProtocolMismatch.
func parseMeteoReply(reply []byte, wantKind measure.Kind, wantSensorID uint32) (float32, error) {
	fields := strings.Split(string(reply), ",")
	if len(fields) < 2 || fields[0] != "METEO" {
		return 0, gwerr.ProtocolMismatch
	}

	switch fields[1] {
	case "RET_VAL":
		return 0, gwerr.ProtocolMismatch

	default:
		gotKind, ok := measure.KindFromReplyTag(fields[1])
		if !ok || gotKind != wantKind {
			return 0, gwerr.ProtocolMismatch
		}
		if len(fields) != 4 {
			return 0, gwerr.ProtocolMismatch
		}
		gotSensorID, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil || uint32(gotSensorID) != wantSensorID {
			return 0, gwerr.ProtocolMismatch
		}
		val, err := strconv.ParseFloat(fields[3], 32)
		if err != nil {
			return 0, gwerr.ProtocolMismatch
		}
		return float32(val), nil
	}
}
