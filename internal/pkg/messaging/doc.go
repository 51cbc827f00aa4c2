// Package messaging publishes domain events to a broker without tying
// callers to NATS, NSQ, or Kafka.
package messaging
