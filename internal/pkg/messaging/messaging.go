package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when the selected broker cannot honour an option,
// such as a delivery delay.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// ErrDestinationRequired is returned when Publish is called without a topic or subject.
var ErrDestinationRequired = errors.New("messaging: destination is required")

// Publisher sends messages to a destination (topic or subject).
type Publisher interface {
	io.Closer

	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is a broker-agnostic message to be published.
type OutgoingMessage struct {
	Body []byte

	// Key is used by Kafka for partitioning and ignored elsewhere.
	Key []byte

	// Headers may repeat keys; entries with an empty key are skipped.
	Headers []Header

	// Delay requests deferred delivery. Only NSQ supports it.
	Delay time.Duration
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries what the broker reported back, if anything.
type PublishResult struct {
	Topic     string
	Timestamp time.Time
}
