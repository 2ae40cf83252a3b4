package verikafka

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Reporter serializes status events to a shared stream as newline-delimited
// JSON, one object per line. The acknowledgment callbacks, the send loop and
// the shutdown path all print through the same Reporter, so every write is
// performed under a mutex: harnesses parse the output line by line and a
// partially interleaved line would break the contract.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewReporter creates a Reporter writing to w. Pass os.Stdout in production;
// tests hand in a buffer.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Emit marshals the event and writes it followed by a newline, atomically with
// respect to other Emit calls. Marshal failures are returned rather than
// printed so no malformed line ever reaches the stream.
func (r *Reporter) Emit(event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling status event: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing status event: %w", err)
	}
	return nil
}
