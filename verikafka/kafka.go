package verikafka

import (
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/segmentio/ksuid"
)

// Ack is the outcome of one dispatched message, delivered exactly once
// through the callback registered at send time. Partition and Offset are
// meaningful only when Err is nil.
type Ack struct {
	Partition int32
	Offset    int64
	Err       error
}

// AsyncSender is the seam between the producer driver and the underlying
// Kafka client. Send dispatches a message asynchronously; the callback is
// invoked exactly once per accepted message, from the client's own
// goroutines, possibly concurrently with the caller. A non-nil return from
// Send means the client rejected the message before accepting it
// asynchronously, and the callback will never fire for it.
//
// Close flushes buffered and in-flight messages, blocking up to timeout.
// Messages not flushed in time are abandoned.
type AsyncSender interface {
	Send(topic string, key *string, value string, cb func(Ack)) error
	Close(timeout time.Duration) error
}

// saramaSender adapts a sarama.AsyncProducer to the AsyncSender contract.
// Sarama reports outcomes on shared Successes/Errors channels rather than per
// message, so the per-message callback rides along on ProducerMessage.Metadata
// and two drain goroutines route each outcome back to its callback.
type saramaSender struct {
	producer sarama.AsyncProducer
	drained  sync.WaitGroup

	// mu orders Send against Close. Once closed, sarama's input channel may be
	// closed at any moment, so late sends are rejected synchronously instead
	// of racing it.
	mu     sync.RWMutex
	closed bool
}

// NewSaramaSender builds the default AsyncSender backend from the
// configuration. Construction failure (unreachable brokers, bad config) is
// fatal to the caller; nothing is retried.
func NewSaramaSender(cfg Config) (AsyncSender, error) {
	producer, err := sarama.NewAsyncProducer(cfg.Brokers, applyProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating kafka producer: %w", err)
	}

	s := &saramaSender{producer: producer}
	s.drained.Add(2)
	go s.drainSuccesses()
	go s.drainErrors()
	return s, nil
}

// applyProducerConfig maps our Config onto a sarama.Config.
// Retries stay at zero: this tool exists to surface failures, not absorb them.
func applyProducerConfig(cfg Config) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = newClientID()
	saramaConfig.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	saramaConfig.Producer.Retry.Max = 0
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	return saramaConfig
}

// newClientID generates a unique Kafka client ID so several concurrent
// harness producers remain distinguishable in broker logs.
func newClientID() string {
	return "verikafka-" + ksuid.New().String()
}

func (s *saramaSender) Send(topic string, key *string, value string, cb func(Ack)) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return sarama.ErrShuttingDown
	}

	msg := &sarama.ProducerMessage{
		Topic:    topic,
		Value:    sarama.StringEncoder(value),
		Metadata: cb,
	}
	if key != nil {
		msg.Key = sarama.StringEncoder(*key)
	}
	s.producer.Input() <- msg
	return nil
}

func (s *saramaSender) drainSuccesses() {
	defer s.drained.Done()
	for msg := range s.producer.Successes() {
		cb := msg.Metadata.(func(Ack))
		cb(Ack{Partition: msg.Partition, Offset: msg.Offset})
	}
}

func (s *saramaSender) drainErrors() {
	defer s.drained.Done()
	for producerErr := range s.producer.Errors() {
		cb := producerErr.Msg.Metadata.(func(Ack))
		cb(Ack{Err: producerErr.Err})
	}
}

// Close asks sarama to flush and shut down, waiting at most timeout. Sarama's
// own Close blocks until everything in flight has resolved, so it runs in a
// goroutine and we give up on it at the deadline; whatever did not flush by
// then never produces an acknowledgment.
func (s *saramaSender) Close(timeout time.Duration) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- s.producer.Close()
	}()

	select {
	case err := <-done:
		s.drained.Wait()
		return err
	case <-time.After(timeout):
		return fmt.Errorf("flush did not complete within %s", timeout)
	}
}
