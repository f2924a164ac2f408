package market_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/zhouzirui/marketplace/backend/internal/events"
	"github.com/zhouzirui/marketplace/backend/internal/logging"
	model "github.com/zhouzirui/marketplace/backend/internal/model/market"
	market "github.com/zhouzirui/marketplace/backend/internal/service/market"
)

func TestSeedReplacesExistingData(t *testing.T) {
	ctx := context.Background()
	store := model.NewMemoryStore()
	svc := market.NewService(store, nil, logging.Nop())

	if err := store.Users().Create(ctx, model.User{ID: 999, FirstName: "stale"}); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	ds, err := model.Seed()
	if err != nil {
		t.Fatalf("Seed dataset err: %v", err)
	}
	if err := svc.Seed(ctx, ds); err != nil {
		t.Fatalf("Seed err: %v", err)
	}

	if _, err := svc.Users().Get(ctx, 999); err == nil {
		t.Fatal("expected stale user to be removed")
	}

	users, _ := svc.Users().List(ctx)
	orders, _ := svc.Orders().List(ctx)
	offers, _ := svc.Offers().List(ctx)
	if len(users) != len(ds.Users) || len(orders) != len(ds.Orders) || len(offers) != len(ds.Offers) {
		t.Fatalf("unexpected counts: users=%d orders=%d offers=%d", len(users), len(orders), len(offers))
	}
}

// recordingStore logs Reset and every Create in call order.
type recordingStore struct {
	*model.MemoryStore
	calls *[]string
}

type recordingRepo[T model.Record] struct {
	model.Repository[T]
	calls *[]string
}

func (r recordingRepo[T]) Create(ctx context.Context, rec T) error {
	*r.calls = append(*r.calls, fmt.Sprintf("%s:%d", rec.Collection(), rec.RecordID()))
	return r.Repository.Create(ctx, rec)
}

func (s recordingStore) Users() model.Repository[model.User] {
	return recordingRepo[model.User]{s.MemoryStore.Users(), s.calls}
}

func (s recordingStore) Orders() model.Repository[model.Order] {
	return recordingRepo[model.Order]{s.MemoryStore.Orders(), s.calls}
}

func (s recordingStore) Offers() model.Repository[model.Offer] {
	return recordingRepo[model.Offer]{s.MemoryStore.Offers(), s.calls}
}

func (s recordingStore) Reset(ctx context.Context) error {
	*s.calls = append(*s.calls, "reset")
	return s.MemoryStore.Reset(ctx)
}

func TestSeedOrder(t *testing.T) {
	ctx := context.Background()
	var calls []string
	store := recordingStore{MemoryStore: model.NewMemoryStore(), calls: &calls}
	svc := market.NewService(store, nil, logging.Nop())

	ds, err := model.Seed()
	if err != nil {
		t.Fatalf("Seed dataset err: %v", err)
	}
	if err := svc.Seed(ctx, ds); err != nil {
		t.Fatalf("Seed err: %v", err)
	}

	want := []string{"reset"}
	for _, u := range ds.Users {
		want = append(want, fmt.Sprintf("users:%d", u.ID))
	}
	for _, o := range ds.Orders {
		want = append(want, fmt.Sprintf("orders:%d", o.ID))
	}
	for _, o := range ds.Offers {
		want = append(want, fmt.Sprintf("offers:%d", o.ID))
	}
	if !slices.Equal(calls, want) {
		t.Fatalf("seed calls = %v, want %v", calls, want)
	}
}

func TestSeedStopsOnDuplicateID(t *testing.T) {
	ctx := context.Background()
	svc := market.NewService(model.NewMemoryStore(), nil, logging.Nop())

	ds := model.Dataset{Users: []model.User{{ID: 1}, {ID: 1}}}
	err := svc.Seed(ctx, ds)

	var conflict *model.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestWritesPublishChanges(t *testing.T) {
	ctx := context.Background()
	hub := events.NewHub(8, logging.Nop())
	sub := hub.Subscribe()
	defer sub.Close()

	svc := market.NewService(model.NewMemoryStore(), hub, logging.Nop())
	orders := svc.Orders()

	order := model.Order{ID: 5, Name: "Move", CustomerID: 1}
	if err := orders.Create(ctx, order); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	order.Price = 40
	if err := orders.Replace(ctx, order); err != nil {
		t.Fatalf("Replace err: %v", err)
	}
	if err := orders.Delete(ctx, 5); err != nil {
		t.Fatalf("Delete err: %v", err)
	}

	want := []string{"orders.created", "orders.updated", "orders.deleted"}
	for _, name := range want {
		change := <-sub.C()
		if change.Name() != name {
			t.Fatalf("unexpected event: got %s want %s", change.Name(), name)
		}
		if change.RecordID != 5 {
			t.Fatalf("unexpected record id: %d", change.RecordID)
		}
	}
}

func TestFailedWritesDoNotPublish(t *testing.T) {
	ctx := context.Background()
	hub := events.NewHub(8, logging.Nop())
	sub := hub.Subscribe()
	defer sub.Close()

	svc := market.NewService(model.NewMemoryStore(), hub, logging.Nop())
	if err := svc.Offers().Delete(ctx, 1); err == nil {
		t.Fatal("expected NotFound for missing offer")
	}

	select {
	case change := <-sub.C():
		t.Fatalf("unexpected change %s", change.Name())
	default:
	}
}
