// Package events provides types.EventSink implementations: an in-memory
// recorder, a fan-out helper, a Bun-backed audit repository and a Redis
// pub/sub publisher.
package events
