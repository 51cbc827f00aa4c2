package config

import (
	"io"
	"time"
)

// TimeConfig reads integer configuration values as durations of a fixed unit.
type TimeConfig interface {
	// GetMillisecond reads the value for key as a number of milliseconds.
	GetMillisecond(key string) time.Duration

	// GetSecond reads the value for key as a number of seconds.
	GetSecond(key string) time.Duration

	// GetMinute reads the value for key as a number of minutes.
	GetMinute(key string) time.Duration
}

// NumberConfig reads numeric configuration values.
//
// A missing key or an unconvertible value yields the zero value.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetUint(key string) uint
	GetFloat64(key string) float64
}

// Config is the read-only view of the service configuration.
//
// Business code depends on this interface and never on the concrete loader so
// tests can build a Config from an in-memory document.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	// GetBool reads the value for key as a bool.
	GetBool(key string) bool

	// GetString reads the value for key as a string.
	GetString(key string) string

	// GetArray reads a comma separated value for key.
	// Configuration value is stored with format <element1>,<element2>,...
	GetArray(key string) []string

	// Sub returns the raw structured value stored under key (lists of maps,
	// nested documents). It returns nil when the key is absent.
	Sub(key string) any
}
