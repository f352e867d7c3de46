package eventstore

import (
	"context"
	"time"
)

// Store persists and retrieves journal events.
type Store interface {
	// Append adds an event; ID and Timestamp are assigned when zero.
	Append(ctx context.Context, e Event) error

	// GetByBuildID returns all events of a build in append order.
	GetByBuildID(ctx context.Context, buildID string) ([]Event, error)

	// GetRange returns events with start <= timestamp <= end in append order.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// LastPageFingerprint returns the source fingerprint recorded by the most
	// recent page_translated event with the given subject, the page's output
	// path when one was recorded.
	LastPageFingerprint(ctx context.Context, subject string) (fingerprint string, found bool, err error)

	// Close releases the store.
	Close() error
}
