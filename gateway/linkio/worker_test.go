package linkio

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"sensorgate/gateway/frame"
)

// pipePort is an in-memory full-duplex Port for tests: writes to it become
// readable from the "remote" side and vice versa, like a loopback cable.
type pipePort struct {
	toRemote    *io.PipeReader
	toRemoteW   *io.PipeWriter
	fromRemote  *io.PipeReader
	fromRemoteW *io.PipeWriter
}

func newPipePort() (local *pipePort, remote *pipePort) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()
	local = &pipePort{toRemote: ar, toRemoteW: aw, fromRemote: br, fromRemoteW: bw}
	remote = &pipePort{toRemote: br, toRemoteW: bw, fromRemote: ar, fromRemoteW: aw}
	return local, remote
}

func (p *pipePort) Read(b []byte) (int, error)  { return p.fromRemote.Read(b) }
func (p *pipePort) Write(b []byte) (int, error) { return p.toRemoteW.Write(b) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubmitRoundTripS2(t *testing.T) {
	local, remote := newPipePort()
	w := New(local, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Simulate the MCU side: read one frame, reply with a canned payload.
	go func() {
		buf := make([]byte, 256)
		n, err := remote.Read(buf)
		if err != nil {
			return
		}
		_ = n
		reply := frame.Encode([]byte("1,METEO,TEMPERATURE_REPLY,0,25.0"))
		_, _ = remote.Write(reply)
	}()

	got, err := w.Submit(ctx, 2, []byte("METEO,GET_TEMPERATURE,0"))
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if string(got) != "METEO,TEMPERATURE_REPLY,0,25.0" {
		t.Fatalf("got %q", got)
	}
}

func TestSubmitTimeoutS3(t *testing.T) {
	local, _ := newPipePort()
	w := New(local, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	start := time.Now()
	_, err := w.Submit(ctx, 1, []byte("METEO,GET_PRESSURE,0"))
	elapsed := time.Since(start)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed < ReplyTimeout {
		t.Fatalf("returned too early: %v", elapsed)
	}
}

func TestConcurrentSubmitsGetDistinctReplies(t *testing.T) {
	local, remote := newPipePort()
	w := New(local, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Echo server: for every inbound frame "<tid>,<node>,<payload>", reply
	// "<tid>,<payload>" so callers can verify they got their own payload.
	go func() {
		p := frame.NewParser()
		buf := make([]byte, 256)
		for {
			n, err := remote.Read(buf)
			if err != nil {
				return
			}
			p.FeedAll(buf[:n], func(payload []byte) {
				// payload = "<tid>,<node>,<rest>"
				first := indexByte(payload, ',')
				rest := payload[first+1:]
				second := indexByte(rest, ',')
				out := append(append([]byte{}, payload[:first]...), ',')
				out = append(out, rest[second+1:]...)
				_, _ = remote.Write(frame.Encode(out))
			}, func(error) {})
		}
	}()

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := []byte{byte('a' + i)}
			got, err := w.Submit(ctx, uint32(i), payload)
			if err != nil {
				t.Errorf("submit %d: %v", i, err)
				return
			}
			results[i] = string(got)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		want := string([]byte{byte('a' + i)})
		if r != want {
			t.Fatalf("result %d = %q, want %q", i, r, want)
		}
	}
}

func TestBadChecksumS5LeavesPendingUntouched(t *testing.T) {
	local, remote := newPipePort()
	w := New(local, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	go func() {
		buf := make([]byte, 256)
		_, err := remote.Read(buf)
		if err != nil {
			return
		}
		_, _ = remote.Write([]byte("$1,METEO,PRESSURE_REPLY,0,100.0*00\r\n"))
	}()

	_, err := w.Submit(ctx, 1, []byte("METEO,GET_PRESSURE,0"))
	if err == nil {
		t.Fatal("expected timeout since the only reply had a bad checksum")
	}
}
