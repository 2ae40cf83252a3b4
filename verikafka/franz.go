package verikafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// franzSender is the alternate AsyncSender backend on franz-go. Unlike
// sarama, kgo delivers outcomes through a per-record callback, so no routing
// layer is needed.
type franzSender struct {
	client *kgo.Client
}

// NewFranzSender builds the franz-go backend, selected with --client franz.
// Idempotent writes are disabled so the zero-retry requirement holds and so
// acks 0 and 1 remain configurable.
func NewFranzSender(cfg Config) (AsyncSender, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(newClientID()),
		kgo.RequiredAcks(franzAcks(cfg.Acks)),
		kgo.DisableIdempotentWrite(),
		kgo.RecordRetries(1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	return &franzSender{client: client}, nil
}

func franzAcks(acks int) kgo.Acks {
	switch acks {
	case 0:
		return kgo.NoAck()
	case 1:
		return kgo.LeaderAck()
	default:
		return kgo.AllISRAcks()
	}
}

func (f *franzSender) Send(topic string, key *string, value string, cb func(Ack)) error {
	record := &kgo.Record{
		Topic: topic,
		Value: []byte(value),
	}
	if key != nil {
		record.Key = []byte(*key)
	}

	f.client.Produce(context.Background(), record, func(r *kgo.Record, err error) {
		if err != nil {
			cb(Ack{Err: err})
			return
		}
		cb(Ack{Partition: r.Partition, Offset: r.Offset})
	})
	return nil
}

func (f *franzSender) Close(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := f.client.Flush(ctx)
	f.client.Close()
	if err != nil {
		return fmt.Errorf("flushing kafka client: %w", err)
	}
	return nil
}
