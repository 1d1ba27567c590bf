package meteo

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

type recordingSink struct {
	tid     uint64
	module  string
	payload []byte
}

func (s *recordingSink) Reply(tid uint64, module string, payload []byte) error {
	s.tid = tid
	s.module = module
	s.payload = append([]byte(nil), payload...)
	return nil
}

func TestHandleTemperatureReply(t *testing.T) {
	m := New()
	sink := &recordingSink{}
	if err := m.Handle(sink, 9, []byte("GET_TEMPERATURE,3")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sink.tid != 9 || sink.module != "METEO" {
		t.Fatalf("sink = %+v", sink)
	}
	fields := strings.Split(string(sink.payload), ",")
	if len(fields) != 3 || fields[0] != "TEMPERATURE_REPLY" || fields[1] != "3" {
		t.Fatalf("payload = %q", sink.payload)
	}
	v, err := strconv.ParseFloat(fields[2], 32)
	if err != nil {
		t.Fatalf("value not a float: %v", err)
	}
	if math.Abs(v-25.0) > 20 {
		t.Fatalf("first temperature reading %v implausibly far from mean 25.0", v)
	}
}

func TestHandleUnknownVerb(t *testing.T) {
	m := New()
	sink := &recordingSink{}
	if err := m.Handle(sink, 1, []byte("GET_NONSENSE,0")); err == nil {
		t.Fatal("expected error for unknown verb")
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	m := New()
	sink := &recordingSink{}
	if err := m.Handle(sink, 1, []byte("GET_TEMPERATURE")); err == nil {
		t.Fatal("expected error for missing sensor id")
	}
	if err := m.Handle(sink, 1, []byte("GET_TEMPERATURE,notanumber")); err == nil {
		t.Fatal("expected error for unparseable sensor id")
	}
}

func TestSampleWalksFromLastValue(t *testing.T) {
	m := New()
	sink := &recordingSink{}
	for i := 0; i < 20; i++ {
		if err := m.Handle(sink, uint64(i), []byte("GET_HUMIDITY,0")); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
	key := lastKey{verb: "GET_HUMIDITY", sensorID: 0}
	m.mu.Lock()
	last, ok := m.last[key]
	m.mu.Unlock()
	if !ok {
		t.Fatal("expected a stored last value after repeated reads")
	}
	if math.Abs(last-65.0) > 10 {
		t.Fatalf("humidity walked implausibly far from its mean: %v", last)
	}
}

func TestSeparateSensorIDsTrackIndependentLastValues(t *testing.T) {
	m := New()
	sink := &recordingSink{}
	_ = m.Handle(sink, 1, []byte("GET_PRESSURE,0"))
	_ = m.Handle(sink, 2, []byte("GET_PRESSURE,1"))

	m.mu.Lock()
	_, ok0 := m.last[lastKey{verb: "GET_PRESSURE", sensorID: 0}]
	_, ok1 := m.last[lastKey{verb: "GET_PRESSURE", sensorID: 1}]
	m.mu.Unlock()
	if !ok0 || !ok1 {
		t.Fatal("expected independent last-value entries per sensor id")
	}
}
