package verikafka

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// VerifiableProducer drives the whole tool: it owns the send loop, the status
// reporting and the shutdown protocol. Exactly three pieces of state are
// shared with the client's callback goroutines and the signal handler — the
// two counters and the stop flag — and all three are atomics.
//
// Lifecycle: NewVerifiableProducer, then Run (blocking), then Shutdown.
// Shutdown may also be called concurrently with Run by a signal handler; it
// stops the loop, flushes the client and emits the summary exactly once.
type VerifiableProducer struct {
	cfg      Config
	sender   AsyncSender
	reporter *Reporter
	logger   *zap.Logger

	numSent  atomic.Int64 // send attempts, successful or not
	numAcked atomic.Int64 // broker acknowledgments received

	stopping atomic.Bool // set once; the loop checks it before every send
	start    time.Time

	shutdown sync.Once

	now func() time.Time
}

// NewVerifiableProducer wires a driver to a client backend and a reporter.
// The loop's start time is taken here so the summary's average throughput is
// measured over the full process lifetime, which is what harnesses parsing
// the summary expect.
func NewVerifiableProducer(cfg Config, sender AsyncSender, reporter *Reporter, logger *zap.Logger) *VerifiableProducer {
	return &VerifiableProducer{
		cfg:      cfg,
		sender:   sender,
		reporter: reporter,
		logger:   logger,
		start:    time.Now(),
		now:      time.Now,
	}
}

// NewSender builds the AsyncSender backend named by the configuration.
func NewSender(cfg Config) (AsyncSender, error) {
	switch cfg.Client {
	case ClientFranz:
		return NewFranzSender(cfg)
	case ClientSarama:
		return NewSaramaSender(cfg)
	default:
		return nil, fmt.Errorf("unknown client backend %q", cfg.Client)
	}
}

// Send dispatches one message to the configured topic. The attempt counter is
// incremented whether or not the dispatch is accepted. A synchronous
// rejection by the client is reported immediately as a send error; otherwise
// the outcome arrives later through the acknowledgment callback.
func (p *VerifiableProducer) Send(key *string, value string) {
	p.numSent.Add(1)
	if err := p.sender.Send(p.cfg.Topic, key, value, p.ackCallback(key, value)); err != nil {
		p.reportError(err, key, value)
	}
}

// ackCallback builds the continuation for one message. It runs on the
// client's goroutines, concurrently with the loop and with other callbacks,
// and must not block: it only bumps the counter and prints.
func (p *VerifiableProducer) ackCallback(key *string, value string) func(Ack) {
	return func(ack Ack) {
		if ack.Err != nil {
			p.reportError(ack.Err, key, value)
			return
		}
		p.numAcked.Add(1)
		p.reporter.Emit(SendSuccess{
			Class:     EventClass,
			Name:      NameSendSuccess,
			TimeMs:    p.now().UnixMilli(),
			Topic:     p.cfg.Topic,
			Partition: ack.Partition,
			Offset:    ack.Offset,
			Key:       key,
			Value:     value,
		})
	}
}

func (p *VerifiableProducer) reportError(err error, key *string, value string) {
	p.reporter.Emit(SendError{
		Class:     EventClass,
		Name:      NameSendError,
		TimeMs:    p.now().UnixMilli(),
		Topic:     p.cfg.Topic,
		Exception: fmt.Sprintf("%T", err),
		Message:   err.Error(),
		Key:       key,
		Value:     value,
	})
}

// Run executes the send loop: unkeyed messages whose values are the decimal
// integers 0, 1, 2, ... — MaxMessages of them, or unbounded when MaxMessages
// is negative. The stop flag is checked before each send so a shutdown is
// observed within one iteration. After each send the throttler decides
// whether the loop is ahead of the target rate and needs to sleep.
func (p *VerifiableProducer) Run() {
	infinite := p.cfg.MaxMessages < 0
	throttler := NewThroughputThrottler(p.cfg.Throughput, p.start)

	for i := int64(0); i < p.cfg.MaxMessages || infinite; i++ {
		if p.stopping.Load() {
			break
		}
		sendStart := p.now()
		p.Send(nil, strconv.FormatInt(i, 10))

		if throttler.ShouldThrottle(i, sendStart) {
			throttler.Throttle()
		}
	}
}

// Shutdown stops the loop, flushes the client and emits the summary. It is
// safe to call from a signal handler while Run is still executing, and safe
// to call more than once: every call after the first is a no-op, so a signal
// arriving while the normal end-of-loop shutdown runs cannot double-count or
// emit a second summary.
func (p *VerifiableProducer) Shutdown() {
	p.shutdown.Do(func() {
		p.stopping.Store(true)

		if err := p.sender.Close(p.cfg.CloseTimeout); err != nil {
			p.logger.Warn("close did not flush cleanly", zap.Error(err))
		}

		elapsedMs := p.now().Sub(p.start).Milliseconds()
		if elapsedMs < 1 {
			elapsedMs = 1
		}
		p.reporter.Emit(ToolData{
			Class:            EventClass,
			Name:             NameToolData,
			Sent:             p.numSent.Load(),
			Acked:            p.numAcked.Load(),
			TargetThroughput: p.cfg.Throughput,
			AvgThroughput:    1000 * float64(p.numAcked.Load()) / float64(elapsedMs),
		})
	})
}

// NumSent returns the number of send attempts so far.
func (p *VerifiableProducer) NumSent() int64 { return p.numSent.Load() }

// NumAcked returns the number of acknowledgments received so far. It never
// exceeds NumSent.
func (p *VerifiableProducer) NumAcked() int64 { return p.numAcked.Load() }
