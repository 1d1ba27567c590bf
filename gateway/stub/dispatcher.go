// Package stub implements the microcontroller-side peer of the link
// layer (spec §4.7): a frame parser identical in shape to the gateway
// side, routing decoded requests to named modules. Shaped after the
// teacher's gpio_worker.go command-dispatch loop, generalized from a
// fixed command set to a name -> Module map built once at startup.
package stub

import (
	"context"
	"log/slog"

	"sensorgate/gateway/frame"
)

// Sink is how a Module writes its one reply frame. A real Dispatcher
// passes a sink bound to its own outbound stream; tests can pass a
// recording fake.
type Sink interface {
	// Reply writes "$<tid>,<module>,<payload>*<csum>\r\n" for the given
	// transaction id, module name, and module-formatted payload.
	Reply(tid uint64, module string, payload []byte) error
}

// Module handles one module's requests. Handle receives the already
// stripped module payload (everything after "<tid>,<module>,") and may
// write at most one reply via sink.
type Module interface {
	Handle(sink Sink, tid uint64, payload []byte) error
}

// Stream is the full-duplex byte stream the Dispatcher owns.
type Stream interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Dispatcher is the stub device's frame parser plus module router (spec
// §4.7). One Dispatcher owns one Stream and one module map, built once
// at construction and never mutated afterward.
type Dispatcher struct {
	stream  Stream
	log     *slog.Logger
	modules map[string]Module
	parser  *frame.Parser
}

// New builds a Dispatcher over stream, routing decoded frames to modules
// by name.
func New(stream Stream, modules map[string]Module, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{stream: stream, log: log, modules: modules, parser: frame.NewParser()}
}

// Run reads from the stream and dispatches decoded frames until ctx is
// cancelled or a read error occurs.
func (d *Dispatcher) Run(ctx context.Context) error {
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := d.stream.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		d.parser.FeedAll(chunk, d.dispatch, d.discard)
	}
}

// dispatch splits the inner payload at the first comma twice
// (<tid>,<module>,<module-payload>), looks up the module, and invokes its
// handler. Unknown modules and malformed payloads are logged and dropped.
func (d *Dispatcher) dispatch(payload []byte) {
	tid, rest, ok := cutComma(payload)
	if !ok {
		d.log.Warn("dropping frame with no transaction id", "payload", string(payload))
		return
	}
	tidVal, ok := parseUint64(tid)
	if !ok {
		d.log.Warn("dropping frame with unparseable transaction id", "payload", string(payload))
		return
	}
	moduleName, modPayload, ok := cutComma(rest)
	if !ok {
		d.log.Warn("dropping frame with no module name", "payload", string(payload))
		return
	}
	mod, ok := d.modules[string(moduleName)]
	if !ok {
		d.log.Warn("unknown module", "module", string(moduleName))
		return
	}
	sink := &frameSink{stream: d.stream}
	if err := mod.Handle(sink, tidVal, modPayload); err != nil {
		d.log.Warn("module handler error", "module", string(moduleName), "error", err)
	}
}

func (d *Dispatcher) discard(err error) {
	d.log.Warn("dropping invalid frame", "error", err)
}

// frameSink implements Sink by encoding and writing a frame directly to
// the dispatcher's stream.
type frameSink struct {
	stream Stream
}

func (s *frameSink) Reply(tid uint64, module string, payload []byte) error {
	out := make([]byte, 0, len(payload)+len(module)+24)
	out = appendUint64(out, tid)
	out = append(out, ',')
	out = append(out, module...)
	out = append(out, ',')
	out = append(out, payload...)

	framed := frame.Encode(out)
	total := 0
	for total < len(framed) {
		n, err := s.stream.Write(framed[total:])
		total += n
		if err != nil {
			return err
		}
		if n == 0 {
			return errShortWrite
		}
	}
	return nil
}

var errShortWrite = shortWriteError("stub: short write with no progress")

type shortWriteError string

func (e shortWriteError) Error() string { return string(e) }

func cutComma(b []byte) (before, after []byte, found bool) {
	for i, c := range b {
		if c == ',' {
			return b[:i], b[i+1:], true
		}
	}
	return nil, nil, false
}

func parseUint64(b []byte) (uint64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
	}
	return v, true
}

func appendUint64(dst []byte, v uint64) []byte {
	if v == 0 {
		return append(dst, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = byte('0' + v%10)
		v /= 10
	}
	return append(dst, tmp[i:]...)
}
