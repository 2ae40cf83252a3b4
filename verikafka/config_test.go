package verikafka

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := Config{
		Topic:        "verify",
		Brokers:      []string{"localhost:9092"},
		MaxMessages:  -1,
		Throughput:   -1,
		Acks:         -1,
		CloseTimeout: 10 * time.Second,
		Client:       ClientSarama,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "franz backend", mutate: func(c *Config) { c.Client = ClientFranz }, wantErr: false},
		{name: "acks zero", mutate: func(c *Config) { c.Acks = 0 }, wantErr: false},
		{name: "acks leader", mutate: func(c *Config) { c.Acks = 1 }, wantErr: false},
		{name: "missing topic", mutate: func(c *Config) { c.Topic = "" }, wantErr: true},
		{name: "no brokers", mutate: func(c *Config) { c.Brokers = nil }, wantErr: true},
		{name: "empty broker entry", mutate: func(c *Config) { c.Brokers = []string{""} }, wantErr: true},
		{name: "acks out of range", mutate: func(c *Config) { c.Acks = 2 }, wantErr: true},
		{name: "unknown client backend", mutate: func(c *Config) { c.Client = "librdkafka" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
