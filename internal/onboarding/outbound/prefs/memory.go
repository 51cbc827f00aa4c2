package prefs

import (
	"context"
	"sync"

	"github.com/shandysiswandi/shield/internal/pkg/goerror"
	"github.com/shandysiswandi/shield/internal/pkg/instrument"
)

type memoryEntry struct {
	completed bool
	phone     string
}

// Memory keeps preferences in process.
type Memory struct {
	tracing

	mu      sync.RWMutex
	devices map[string]memoryEntry
}

func NewMemory(ins instrument.Instrumentation) *Memory {
	return &Memory{
		tracing: tracing{ins: ins, driver: DriverMemory},
		devices: make(map[string]memoryEntry),
	}
}

func (m *Memory) Close() error { return nil }

func (m *Memory) get(deviceID string) (memoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.devices[deviceID]
	if !ok {
		return memoryEntry{}, goerror.ErrNotFound
	}
	return e, nil
}

func (m *Memory) update(deviceID string, fn func(*memoryEntry)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.devices[deviceID]
	fn(&e)
	m.devices[deviceID] = e
}

func (m *Memory) OnboardingCompleted(ctx context.Context, deviceID string) (_ bool, err error) {
	_, span := m.startSpan(ctx, "OnboardingCompleted", deviceID)
	defer func() { m.endSpan(span, err) }()

	e, err := m.get(deviceID)
	return orDefault(e.completed, err)
}

func (m *Memory) SetOnboardingCompleted(ctx context.Context, deviceID string, completed bool) error {
	_, span := m.startSpan(ctx, "SetOnboardingCompleted", deviceID)
	defer span.End()

	m.update(deviceID, func(e *memoryEntry) { e.completed = completed })
	return nil
}

func (m *Memory) LastPhoneNumber(ctx context.Context, deviceID string) (_ string, err error) {
	_, span := m.startSpan(ctx, "LastPhoneNumber", deviceID)
	defer func() { m.endSpan(span, err) }()

	e, err := m.get(deviceID)
	return orDefault(e.phone, err)
}

func (m *Memory) SetLastPhoneNumber(ctx context.Context, deviceID, phone string) error {
	_, span := m.startSpan(ctx, "SetLastPhoneNumber", deviceID)
	defer span.End()

	m.update(deviceID, func(e *memoryEntry) { e.phone = phone })
	return nil
}
