package verikafka

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Client backends the producer can run on. Both speak the same AsyncSender
// contract; which one is used is a harness decision, not a behavioral one.
const (
	ClientSarama = "sarama"
	ClientFranz  = "franz"
)

// Config holds everything the producer needs, built once from command-line
// flags and never mutated afterwards.
type Config struct {
	// Topic is the destination topic for every message.
	Topic string `validate:"required"`

	// Brokers is the bootstrap broker address list.
	Brokers []string `validate:"required,min=1,dive,required"`

	// MaxMessages is the number of messages to produce. If negative, the loop
	// produces until the process is stopped externally.
	MaxMessages int64

	// Throughput is the target rate in messages/sec. If negative or zero the
	// loop runs unthrottled.
	Throughput int64

	// Acks is the acknowledgment requirement for each message: 0 for none,
	// 1 for leader-only, -1 for the full in-sync replica set.
	Acks int `validate:"oneof=-1 0 1"`

	// CloseTimeout bounds the final flush: messages still in flight when it
	// expires are abandoned.
	CloseTimeout time.Duration

	// Client selects the backend implementation.
	Client string `validate:"oneof=sarama franz"`
}

// Validate checks the configuration. A failure here is fatal to the process;
// nothing may be sent on a configuration that does not validate.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid producer configuration: %w", err)
	}
	return nil
}
