package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/pmo-intel/insight-hub/internal/models"
	"github.com/pmo-intel/insight-hub/internal/storage"
)

// AlertCenter is the session's alert working set, seeded from the
// snapshot on every refresh. Acknowledging keeps the alert with its
// status changed; dismissing removes it from the working set for good —
// there is no resurrect operation, and with a store configured the
// dismissal survives a reload.
type AlertCenter struct {
	mu        sync.Mutex
	alerts    []*models.Alert
	dismissed map[string]struct{}
	acked     map[string]struct{}
	store     storage.SessionStore
	logger    *zap.Logger
}

// NewAlertCenter creates the alert working set, loading prior
// acknowledge/dismiss actions from the store when one is configured.
func NewAlertCenter(ctx context.Context, store storage.SessionStore, logger *zap.Logger) *AlertCenter {
	c := &AlertCenter{
		dismissed: make(map[string]struct{}),
		acked:     make(map[string]struct{}),
		store:     store,
		logger:    logger,
	}
	if store != nil {
		acked, dismissed, err := store.AlertState(ctx)
		if err != nil {
			logger.Warn("failed to load persisted alert state", zap.Error(err))
			return c
		}
		for _, id := range acked {
			c.acked[id] = struct{}{}
		}
		for _, id := range dismissed {
			c.dismissed[id] = struct{}{}
		}
	}
	return c
}

// SetSnapshot replaces the working set from freshly loaded alerts.
// Previously dismissed ids stay out; previously acknowledged ids keep
// their status. Alerts are copied so the snapshot stays immutable.
func (c *AlertCenter) SetSnapshot(alerts []*models.Alert) {
	c.mu.Lock()
	defer c.mu.Unlock()

	working := make([]*models.Alert, 0, len(alerts))
	for _, a := range alerts {
		if _, gone := c.dismissed[a.ID]; gone {
			continue
		}
		copied := *a
		if _, ok := c.acked[a.ID]; ok {
			copied.Status = models.AlertAcknowledged
		}
		working = append(working, &copied)
	}
	c.alerts = working
}

// List returns the current working set in snapshot order.
func (c *AlertCenter) List() []*models.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(make([]*models.Alert, 0, len(c.alerts)), c.alerts...)
}

// Acknowledge transitions a new alert to acknowledged. Returns false if
// the id is not in the working set.
func (c *AlertCenter) Acknowledge(ctx context.Context, alertID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, a := range c.alerts {
		if a.ID != alertID {
			continue
		}
		a.Status = models.AlertAcknowledged
		c.acked[alertID] = struct{}{}
		if c.store != nil {
			if err := c.store.MarkAcknowledged(ctx, alertID); err != nil {
				c.logger.Warn("failed to persist alert acknowledgement", zap.String("alert_id", alertID), zap.Error(err))
			}
		}
		return true
	}
	return false
}

// Dismiss removes the alert from the working set. The id is not
// retrievable again within the session. Returns false if absent.
func (c *AlertCenter) Dismiss(ctx context.Context, alertID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, a := range c.alerts {
		if a.ID != alertID {
			continue
		}
		c.alerts = append(c.alerts[:i], c.alerts[i+1:]...)
		c.dismissed[alertID] = struct{}{}
		delete(c.acked, alertID)
		if c.store != nil {
			if err := c.store.MarkDismissed(ctx, alertID); err != nil {
				c.logger.Warn("failed to persist alert dismissal", zap.String("alert_id", alertID), zap.Error(err))
			}
		}
		return true
	}
	return false
}
