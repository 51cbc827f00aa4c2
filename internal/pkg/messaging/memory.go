package messaging

import (
	"context"
	"io"
	"sync"
	"time"
)

// Published is one message captured by Memory.
type Published struct {
	Destination string
	Message     OutgoingMessage
}

// Memory keeps published messages in process for tests and local runs.
type Memory struct {
	mu     sync.Mutex
	msgs   []Published
	closed bool
}

// NewMemory returns an empty in-process publisher.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return PublishResult{}, io.ErrClosedPipe
	}
	m.msgs = append(m.msgs, Published{Destination: destination, Message: msg})

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Messages returns a copy of everything published so far.
func (m *Memory) Messages() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Published(nil), m.msgs...)
}

// Discard drops every message. It backs the "none" driver.
type Discard struct{}

func (Discard) Close() error { return nil }

func (Discard) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	return PublishResult{Topic: destination, Timestamp: time.Now()}, ctx.Err()
}
