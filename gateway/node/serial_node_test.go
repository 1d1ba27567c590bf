package node

import (
	"context"
	"testing"

	"sensorgate/gateway/measure"
)

type fakeSubmitter struct {
	wantNodeID uint32
	reply      []byte
	err        error
	gotPayload []byte
}

func (f *fakeSubmitter) Submit(ctx context.Context, nodeID uint32, payload []byte) ([]byte, error) {
	f.gotPayload = payload
	return f.reply, f.err
}

func TestSerialNodeMeasureSuccess(t *testing.T) {
	sub := &fakeSubmitter{reply: []byte("METEO,TEMPERATURE_REPLY,0,25.0")}
	n := NewSerialNode(2, sub)
	v, err := n.Measure(context.Background(), measure.Temperature, 0)
	if err != nil {
		t.Fatalf("Measure error: %v", err)
	}
	if v != 25.0 {
		t.Fatalf("v = %v", v)
	}
	if string(sub.gotPayload) != "METEO,GET_TEMPERATURE,0" {
		t.Fatalf("payload = %q", sub.gotPayload)
	}
}

func TestSerialNodeMeasureKindMismatchS4(t *testing.T) {
	sub := &fakeSubmitter{reply: []byte("METEO,TEMPERATURE_REPLY,0,25.0")}
	n := NewSerialNode(2, sub)
	_, err := n.Measure(context.Background(), measure.Pressure, 0)
	if err == nil {
		t.Fatal("expected protocol mismatch")
	}
}

func TestSerialNodeMeasureSensorIDMismatch(t *testing.T) {
	sub := &fakeSubmitter{reply: []byte("METEO,TEMPERATURE_REPLY,1,25.0")}
	n := NewSerialNode(2, sub)
	_, err := n.Measure(context.Background(), measure.Temperature, 0)
	if err == nil {
		t.Fatal("expected protocol mismatch on sensor id mismatch")
	}
}

func TestSerialNodeMeasureRetVal(t *testing.T) {
	sub := &fakeSubmitter{reply: []byte("METEO,RET_VAL,-1")}
	n := NewSerialNode(2, sub)
	_, err := n.Measure(context.Background(), measure.Pressure, 0)
	if err == nil {
		t.Fatal("expected protocol mismatch when RET_VAL returned for a measurement")
	}
}

func TestSerialNodeMeasureTransportFailurePropagates(t *testing.T) {
	sub := &fakeSubmitter{err: context.DeadlineExceeded}
	n := NewSerialNode(2, sub)
	_, err := n.Measure(context.Background(), measure.Humidity, 0)
	if err != context.DeadlineExceeded {
		t.Fatalf("expected passthrough error, got %v", err)
	}
}
