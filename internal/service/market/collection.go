package market

import (
	"context"
	"log/slog"

	"github.com/zhouzirui/marketplace/backend/internal/events"
	"github.com/zhouzirui/marketplace/backend/internal/model/market"
)

// Collection exposes the operations on one kind of record. Each call touches
// at most one record; there is no locking across calls, so concurrent
// replace/delete of the same id is last-writer-wins.
type Collection[T market.Record] struct {
	name   string
	repo   market.Repository[T]
	hub    *events.Hub
	logger *slog.Logger
}

func newCollection[T market.Record](name string, repo market.Repository[T], hub *events.Hub, logger *slog.Logger) *Collection[T] {
	return &Collection[T]{name: name, repo: repo, hub: hub, logger: logger.With("collection", name)}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string { return c.name }

// List returns every record.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	return c.repo.List(ctx)
}

// Get returns the record with the given id or a *market.NotFoundError.
func (c *Collection[T]) Get(ctx context.Context, id int64) (T, error) {
	return c.repo.Get(ctx, id)
}

// Create stores a new record verbatim. A taken id yields *market.ConflictError.
func (c *Collection[T]) Create(ctx context.Context, rec T) error {
	if err := c.repo.Create(ctx, rec); err != nil {
		return err
	}
	c.logger.Debug("record created", "id", rec.RecordID())
	c.publish(events.OpCreated, rec.RecordID(), rec)
	return nil
}

// Replace overwrites every non-id field of an existing record.
func (c *Collection[T]) Replace(ctx context.Context, rec T) error {
	if err := c.repo.Replace(ctx, rec); err != nil {
		return err
	}
	c.logger.Debug("record replaced", "id", rec.RecordID())
	c.publish(events.OpUpdated, rec.RecordID(), rec)
	return nil
}

// Delete removes an existing record.
func (c *Collection[T]) Delete(ctx context.Context, id int64) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.logger.Debug("record deleted", "id", id)
	c.publish(events.OpDeleted, id, nil)
	return nil
}

func (c *Collection[T]) publish(op events.Op, id int64, rec any) {
	if c.hub == nil {
		return
	}
	c.hub.Publish(events.Change{Collection: c.name, Op: op, RecordID: id, Record: rec})
}
