package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verikafka/verikafka/verikafka"
)

var (
	topic            string
	brokerList       string
	maxMessages      int64
	throughput       int64
	acks             int
	closeTimeoutSecs int64
	clientBackend    string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "verikafka",
		Short: "verikafka produces increasing integers to the specified topic and prints JSON metadata to stdout on each send request, making externally visible which messages have been acked and which have not.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	rootCmd.Flags().StringVar(&topic, "topic", "", "Produce messages to this topic.")
	rootCmd.Flags().StringVar(&brokerList, "broker-list", "", "Comma-separated list of Kafka brokers in the form HOST1:PORT1,HOST2:PORT2,...")
	rootCmd.Flags().Int64Var(&maxMessages, "max-messages", -1, "Produce this many messages. If -1, produce messages until the process is killed externally.")
	rootCmd.Flags().Int64Var(&throughput, "throughput", -1, "If set >= 0, throttle maximum message throughput to approximately THROUGHPUT messages/sec.")
	rootCmd.Flags().IntVar(&acks, "acks", -1, "Acks required on each produced message: 0, 1 or -1.")
	rootCmd.Flags().Int64Var(&closeTimeoutSecs, "close-timeout", 10, "On shutdown, wait at most this many seconds for unsent messages to flush before stopping the process.")
	rootCmd.Flags().StringVar(&clientBackend, "client", verikafka.ClientSarama, "Kafka client backend to produce with: sarama or franz.")
	rootCmd.MarkFlagRequired("topic")
	rootCmd.MarkFlagRequired("broker-list")
	rootCmd.SilenceUsage = true

	// With no arguments at all this is a help request, not a parse error.
	if len(os.Args) == 1 {
		rootCmd.Help()
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// Diagnostics go to stderr; stdout carries only the JSON status lines
	// that harnesses parse.
	logger := newLogger()
	defer logger.Sync()

	cfg := verikafka.Config{
		Topic:        topic,
		Brokers:      strings.Split(brokerList, ","),
		MaxMessages:  maxMessages,
		Throughput:   throughput,
		Acks:         acks,
		CloseTimeout: time.Duration(closeTimeoutSecs) * time.Second,
		Client:       clientBackend,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sender, err := verikafka.NewSender(cfg)
	if err != nil {
		return err
	}

	producer := verikafka.NewVerifiableProducer(cfg, sender, verikafka.NewReporter(os.Stdout), logger)

	// A termination signal stops the loop, flushes and prints the summary.
	// Shutdown is idempotent, so the signal racing the normal end-of-loop
	// shutdown is harmless.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigs:
			logger.Info("caught signal, stopping", zap.String("signal", sig.String()))
			producer.Shutdown()
		case <-done:
		}
	}()

	producer.Run()
	producer.Shutdown()
	close(done)
	return nil
}

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
