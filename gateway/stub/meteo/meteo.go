// Package meteo implements the stub device's METEO module (spec §4.8): a
// synthetic measurement source used in place of real sensor hardware,
// each reading a random walk from the last value. The per-(kind,
// sensor-id) jitter generator is shaped after the teacher's poller.go
// use of a seeded *rand.Rand for scheduling jitter, generalized here to
// drive a per-kind Gaussian walk instead of a uniform delay.
package meteo

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"sensorgate/gateway/stub"
)

// kindSpec is the initial mean and standard deviation for one measurement
// kind's random walk (spec §4.8's table).
type kindSpec struct {
	verb     string
	replyTag string
	mean     float64
	sigma    float64
}

var kinds = []kindSpec{
	{"GET_TEMPERATURE", "TEMPERATURE_REPLY", 25.0, 1.0},
	{"GET_HUMIDITY", "HUMIDITY_REPLY", 65.0, 0.3},
	{"GET_PRESSURE", "PRESSURE_REPLY", 101325.0, 100.0},
	{"GET_LIGHT_LEVEL", "LIGHT_LEVEL_REPLY", 1000.0, 10.0},
}

func specForVerb(verb string) (kindSpec, bool) {
	for _, k := range kinds {
		if k.verb == verb {
			return k, true
		}
	}
	return kindSpec{}, false
}

// lastKey identifies one (kind, sensor-id) pair's running last value.
type lastKey struct {
	verb     string
	sensorID uint32
}

// Module is the stub METEO module. One instance is registered under name
// "METEO" in the dispatcher's module map.
type Module struct {
	mu   sync.Mutex
	rng  *rand.Rand
	last map[lastKey]float64
}

// New builds a METEO module with a time-seeded generator, matching the
// teacher's per-component *rand.Rand seeding (services/hal/internal/core).
func New() *Module {
	return &Module{
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		last: make(map[lastKey]float64),
	}
}

// Handle implements stub.Module. payload is "<verb>,<sensor-id>" (spec
// §4.8); unknown verbs are reported as an error and produce no reply.
func (m *Module) Handle(sink stub.Sink, tid uint64, payload []byte) error {
	fields := strings.SplitN(string(payload), ",", 2)
	if len(fields) != 2 {
		return errBadRequest
	}
	verb := fields[0]
	sensorID, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return errBadRequest
	}

	spec, ok := specForVerb(verb)
	if !ok {
		return errUnknownVerb
	}

	value := m.sample(spec, uint32(sensorID))
	reply := []byte(strconv.FormatUint(sensorID, 10) + "," + formatFloat(value))
	out := append([]byte(spec.replyTag+","), reply...)
	return sink.Reply(tid, "METEO", out)
}

// sample draws the next value for (spec, sensorID) from a normal
// distribution centered on the last stored value (or the kind's initial
// mean on first use), and stores the drawn value as the new last value.
func (m *Module) sample(spec kindSpec, sensorID uint32) float32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := lastKey{verb: spec.verb, sensorID: sensorID}
	mean, ok := m.last[key]
	if !ok {
		mean = spec.mean
	}
	val := mean + m.rng.NormFloat64()*spec.sigma
	m.last[key] = val
	return float32(val)
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}

type meteoError string

func (e meteoError) Error() string { return string(e) }

const (
	errBadRequest  meteoError = "meteo: malformed request"
	errUnknownVerb meteoError = "meteo: unknown verb"
)
