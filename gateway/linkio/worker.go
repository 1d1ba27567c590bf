// Package linkio implements the serial link worker (spec §4.2): one
// multiplexing transaction engine per physical port, built the way
// uart_worker.go reads a UART into timestamped events, but extended with
// the transaction/pending-table bookkeeping the gateway's request/reply
// protocol needs.
package linkio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sensorgate/gateway/frame"
	"sensorgate/gateway/gwerr"
)

// Port is the byte stream a Worker owns. A real implementation wraps
// go.bug.st/serial.Port; tests use an io.Pipe or net.Pipe pair.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// ReplyTimeout is the caller-visible deadline from spec §4.2: a Submit call
// waits at most this long for a matching reply.
const ReplyTimeout = 3 * time.Second

// sweepInterval and evictionGrace implement D3 (time-keyed eviction of
// stale pending entries). A caller always observes its own ReplyTimeout
// before the sweep would ever touch its entry.
const (
	sweepInterval = 1 * time.Second
	evictionGrace = 2 * ReplyTimeout
)

type submission struct {
	nodeID  uint32
	payload []byte
	reply   chan []byte
}

type pendingEntry struct {
	reply    chan []byte
	deadline time.Time
}

// Worker owns one serial port and multiplexes concurrent Submit callers
// over it. It is the sole mutator of its pending table and the port; the
// pending table is never exposed outside this package (spec §4.2, §9).
type Worker struct {
	port Port
	log  *slog.Logger

	submitCh chan submission
	rxCh     chan []byte

	nextID  uint64 // only ever touched by the Run loop (handleSubmit)
	pending map[uint64]pendingEntry
	parser  *frame.Parser
}

// New creates a Worker bound to port. Call Run in its own goroutine to
// start the worker's dedicated execution context (spec §5).
func New(port Port, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{
		port:     port,
		log:      log,
		submitCh: make(chan submission, 64),
		rxCh:     make(chan []byte, 64),
		pending:  make(map[uint64]pendingEntry),
		parser:   frame.NewParser(),
	}
}

// Run drives the worker's main loop until ctx is cancelled. It also starts
// the dedicated reader goroutine that feeds bytes from the port back to
// the main loop (the only way to multiplex a blocking Read alongside
// channel operations in Go).
func (w *Worker) Run(ctx context.Context) {
	go w.readLoop(ctx)

	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case sub := <-w.submitCh:
			w.handleSubmit(sub)

		case chunk := <-w.rxCh:
			w.parser.FeedAll(chunk, w.deliverFrame, w.discardFrame)

		case <-sweep.C:
			w.evictStale()
		}
	}
}

// readLoop is the only goroutine that calls Port.Read. A read error ends
// only the current read burst (spec §4.2); the loop itself keeps going
// until ctx is cancelled.
func (w *Worker) readLoop(ctx context.Context) {
	buf := make([]byte, 256)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := w.port.Read(buf)
		if err != nil {
			w.log.Debug("link read error, continuing", "error", err)
			continue
		}
		if n == 0 {
			continue
		}
		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		select {
		case w.rxCh <- chunk:
		case <-ctx.Done():
			return
		}
	}
}

// Submit encodes "<tid>,<nodeID>,<payload>" as a frame, writes it, and
// waits up to ReplyTimeout for the matching reply. A successful reply
// carries only the inner module payload; the transaction id is consumed
// by the worker.
func (w *Worker) Submit(ctx context.Context, nodeID uint32, payload []byte) ([]byte, error) {
	reply := make(chan []byte, 1)
	sub := submission{nodeID: nodeID, payload: payload, reply: reply}

	select {
	case w.submitCh <- sub:
	case <-ctx.Done():
		return nil, gwerr.TransportFailure
	}

	timer := time.NewTimer(ReplyTimeout)
	defer timer.Stop()
	select {
	case r := <-reply:
		return r, nil
	case <-timer.C:
		return nil, gwerr.TransportFailure
	case <-ctx.Done():
		return nil, gwerr.TransportFailure
	}
}

func (w *Worker) handleSubmit(sub submission) {
	w.nextID++
	tid := w.nextID
	w.pending[tid] = pendingEntry{reply: sub.reply, deadline: time.Now().Add(ReplyTimeout)}

	out := fmt.Appendf(nil, "%d,%d,%s", tid, sub.nodeID, sub.payload)
	framed := frame.Encode(out)
	if _, err := writeAll(w.port, framed); err != nil {
		// Best-effort: the caller's own timeout subsumes this failure.
		w.log.Warn("link write failed", "error", err)
	}
}

func (w *Worker) deliverFrame(payload []byte) {
	comma := indexByte(payload, ',')
	if comma < 0 {
		w.log.Warn("dropping frame with no transaction id", "payload", string(payload))
		return
	}
	tid, ok := parseUint64(payload[:comma])
	if !ok {
		w.log.Warn("dropping frame with unparseable transaction id", "payload", string(payload))
		return
	}
	entry, ok := w.pending[tid]
	if !ok {
		w.log.Warn("unexpected transaction id", "tid", tid)
		return
	}
	delete(w.pending, tid)
	suffix := payload[comma+1:]
	select {
	case entry.reply <- suffix:
	default:
		// Caller already gave up; reply buffered channel has room 1 so this
		// should never block, but never stall the worker regardless.
	}
}

func (w *Worker) discardFrame(err error) {
	w.log.Warn("dropping invalid frame", "error", err)
}

// evictStale implements D3: reclaim pending entries whose caller has
// certainly already timed out. This never races a live caller because the
// grace period is strictly larger than ReplyTimeout.
func (w *Worker) evictStale() {
	now := time.Now()
	for tid, entry := range w.pending {
		if now.Sub(entry.deadline) > evictionGrace {
			delete(w.pending, tid)
			w.log.Debug("evicted stale pending transaction", "tid", tid)
		}
	}
}

func writeAll(port Port, p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := port.Write(p[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, fmt.Errorf("link: short write with no progress")
		}
	}
	return total, nil
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
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
