// Package verikafka is a test-harness producer for Kafka.
// It produces increasing integers to a topic and prints JSON metadata to stdout
// on each send, making externally visible which messages have been acked and which have not.
// A final summary line reports counts and average throughput.
package verikafka

// EventClass identifies this tool in every status event, so harnesses that
// collect output from several tools can attribute each line.
const EventClass = "verikafka.VerifiableProducer"

// Event names carried in the "name" field of every status line.
// External harnesses dispatch on these values; they must never change.
const (
	NameSendSuccess = "producer_send_success"
	NameSendError   = "producer_send_error"
	NameToolData    = "tool_data"
)

// SendSuccess is emitted once for every message the broker acknowledged.
// Partition and Offset are assigned by the broker on acknowledgment.
type SendSuccess struct {
	Class     string  `json:"class"`
	Name      string  `json:"name"`
	TimeMs    int64   `json:"time_ms"`
	Topic     string  `json:"topic"`
	Partition int32   `json:"partition"`
	Offset    int64   `json:"offset"`
	Key       *string `json:"key"`
	Value     string  `json:"value"`
}

// SendError is emitted when a send fails, either rejected synchronously by the
// client or reported asynchronously through the acknowledgment callback.
type SendError struct {
	Class     string  `json:"class"`
	Name      string  `json:"name"`
	TimeMs    int64   `json:"time_ms"`
	Topic     string  `json:"topic"`
	Exception string  `json:"exception"`
	Message   string  `json:"message"`
	Key       *string `json:"key"`
	Value     string  `json:"value"`
}

// ToolData is the summary emitted exactly once at shutdown.
// AvgThroughput is acked messages per second over wall time since the loop started.
type ToolData struct {
	Class            string  `json:"class"`
	Name             string  `json:"name"`
	Sent             int64   `json:"sent"`
	Acked            int64   `json:"acked"`
	TargetThroughput int64   `json:"target_throughput"`
	AvgThroughput    float64 `json:"avg_throughput"`
}
