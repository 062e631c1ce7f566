// Package storage persists session state (bookmarks and alert status)
// so a server restart does not lose user actions. The snapshot itself is
// never written back.
package storage

import "context"

// SessionStore records bookmark membership and alert lifecycle actions.
type SessionStore interface {
	AddBookmark(ctx context.Context, articleID string) error
	RemoveBookmark(ctx context.Context, articleID string) error
	Bookmarks(ctx context.Context) ([]string, error)

	// MarkAcknowledged records the new -> acknowledged transition.
	MarkAcknowledged(ctx context.Context, alertID string) error
	// MarkDismissed records a dismissal. Dismissed ids are retained so a
	// reload does not resurrect the alert, but they never rejoin the
	// visible working set.
	MarkDismissed(ctx context.Context, alertID string) error
	// AlertState returns acknowledged and dismissed alert ids.
	AlertState(ctx context.Context) (acknowledged, dismissed []string, err error)

	Close() error
}
