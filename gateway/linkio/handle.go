package linkio

import "context"

// Handle is the shared, reference-counted send endpoint to one link
// worker (spec §3's SerialLinkHandle). It is a thin value wrapping a
// pointer to the owning Worker, so cloning it is just copying a pointer —
// cheap and safe to pass across goroutines, per the design notes in
// spec §9 (model it as a handle, not a global singleton).
type Handle struct {
	w *Worker
}

// NewHandle wraps w. Call once per physical port at startup; every Node
// that routes through the same port shares the resulting Handle.
func NewHandle(w *Worker) Handle { return Handle{w: w} }

// Submit forwards to the owning Worker (see Worker.Submit).
func (h Handle) Submit(ctx context.Context, nodeID uint32, payload []byte) ([]byte, error) {
	return h.w.Submit(ctx, nodeID, payload)
}
