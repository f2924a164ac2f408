// Package market implements the record operations behind the HTTP API and
// the destructive seed routine.
package market

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zhouzirui/marketplace/backend/internal/events"
	"github.com/zhouzirui/marketplace/backend/internal/model/market"
)

// Service wires the store to the change feed.
type Service struct {
	store  market.Store
	hub    *events.Hub
	logger *slog.Logger

	users  *Collection[market.User]
	orders *Collection[market.Order]
	offers *Collection[market.Offer]
}

// NewService builds the service. hub may be nil when no change feed is served.
func NewService(store market.Store, hub *events.Hub, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		hub:    hub,
		logger: logger,
		users:  newCollection(market.CollectionUsers, store.Users(), hub, logger),
		orders: newCollection(market.CollectionOrders, store.Orders(), hub, logger),
		offers: newCollection(market.CollectionOffers, store.Offers(), hub, logger),
	}
}

func (s *Service) Users() *Collection[market.User]   { return s.users }
func (s *Service) Orders() *Collection[market.Order] { return s.orders }
func (s *Service) Offers() *Collection[market.Offer] { return s.offers }

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Seed discards every table, recreates the schema and inserts the dataset:
// users first, then orders, then offers. It stops at the first failure.
// Seed writes are not published as changes.
func (s *Service) Seed(ctx context.Context, ds market.Dataset) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}

	for _, u := range ds.Users {
		if err := s.store.Users().Create(ctx, u); err != nil {
			return fmt.Errorf("seed user %d: %w", u.ID, err)
		}
	}
	for _, o := range ds.Orders {
		if err := s.store.Orders().Create(ctx, o); err != nil {
			return fmt.Errorf("seed order %d: %w", o.ID, err)
		}
	}
	for _, o := range ds.Offers {
		if err := s.store.Offers().Create(ctx, o); err != nil {
			return fmt.Errorf("seed offer %d: %w", o.ID, err)
		}
	}

	s.logger.Info("store seeded",
		"users", len(ds.Users),
		"orders", len(ds.Orders),
		"offers", len(ds.Offers))
	return nil
}
