package stub

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"sensorgate/gateway/frame"
)

// pipeStream is an in-memory full-duplex Stream for tests, shaped after
// linkio's pipePort loopback: writes to "in" are what Dispatcher.Run
// reads; the Dispatcher's own writes land on "out" for the test to read.
type pipeStream struct {
	inR  *io.PipeReader
	inW  *io.PipeWriter
	outR *io.PipeReader
	outW *io.PipeWriter
}

func newPipeStream() *pipeStream {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	return &pipeStream{inR: inR, inW: inW, outR: outR, outW: outW}
}

func (p *pipeStream) Read(b []byte) (int, error)  { return p.inR.Read(b) }
func (p *pipeStream) Write(b []byte) (int, error) { return p.outW.Write(b) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// readWithTimeout reads once from r off its own goroutine, returning
// ("", false) if nothing arrives within d.
func readWithTimeout(r io.Reader, d time.Duration) ([]byte, bool) {
	type result struct {
		b []byte
		n int
	}
	ch := make(chan result, 1)
	go func() {
		buf := make([]byte, 256)
		n, err := r.Read(buf)
		if err != nil {
			return
		}
		ch <- result{b: buf, n: n}
	}()
	select {
	case res := <-ch:
		return res.b[:res.n], true
	case <-time.After(d):
		return nil, false
	}
}

type echoModule struct {
	gotPayload []byte
	reply      []byte
}

func (e *echoModule) Handle(sink Sink, tid uint64, payload []byte) error {
	e.gotPayload = append([]byte(nil), payload...)
	if e.reply == nil {
		return errors.New("no reply configured")
	}
	return sink.Reply(tid, "ECHO", e.reply)
}

func TestDispatcherRoutesToModule(t *testing.T) {
	ps := newPipeStream()
	mod := &echoModule{reply: []byte("PONG")}
	d := New(ps, map[string]Module{"ECHO": mod}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	req := frame.Encode([]byte("7,ECHO,hello"))
	go ps.inW.Write(req)

	got, ok := readWithTimeout(ps.outR, 2*time.Second)
	if !ok {
		t.Fatal("no reply received")
	}
	want := frame.Encode([]byte("7,ECHO,PONG"))
	if !bytes.Equal(got, want) {
		t.Fatalf("reply = %q, want %q", got, want)
	}
	if string(mod.gotPayload) != "hello" {
		t.Fatalf("module payload = %q", mod.gotPayload)
	}
}

func TestDispatcherDropsUnknownModule(t *testing.T) {
	ps := newPipeStream()
	d := New(ps, map[string]Module{}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	req := frame.Encode([]byte("1,NOPE,x"))
	go ps.inW.Write(req)

	if _, ok := readWithTimeout(ps.outR, 200*time.Millisecond); ok {
		t.Fatal("expected no reply for unknown module")
	}
}
