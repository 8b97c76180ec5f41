package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Simplici0/costcalc/internal/db"
	"github.com/Simplici0/costcalc/internal/migrations"
	"github.com/Simplici0/costcalc/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	database, err := db.Open(db.Memory)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return New(database)
}

func sampleState(name string) model.FormState {
	return model.FormState{
		Name:          name,
		ContainerType: 0.5,
		BatchSize:     40,
		SellingPrice:  120,
		Items: map[model.Category][]model.LineItem{
			model.Packaging: {{Name: "Банка", Price: 12, Quantity: 40}},
			model.Rent:      {},
		},
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2024, 2, 1, 14, 0, 0, 500, time.UTC) }
	ctx := context.Background()

	created, err := s.Create(ctx, sampleState("Классический"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("first id = %d, want 1", created.ID)
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Классический" || got.BatchSize != 40 || got.SellingPrice != 120 || got.ContainerType != 0.5 {
		t.Fatalf("unexpected configuration: %+v", got)
	}
	if items := got.Items[model.Packaging]; len(items) != 1 || items[0].Quantity != 40 {
		t.Fatalf("packaging items = %+v", items)
	}
	if !got.CreatedAt.Equal(time.Date(2024, 2, 1, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("created_at = %v", got.CreatedAt.Time)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListKeepsSaveOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"Первая", "Вторая", "Третья"} {
		if _, err := s.Create(ctx, sampleState(name)); err != nil {
			t.Fatalf("Create(%s): %v", name, err)
		}
	}

	configs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(configs) != 3 {
		t.Fatalf("len = %d, want 3", len(configs))
	}
	if configs[0].Name != "Первая" || configs[1].Name != "Вторая" || configs[2].Name != "Третья" {
		t.Fatalf("configurations are not in save order: %+v", configs)
	}
}

func TestListEmptyIsNotNil(t *testing.T) {
	configs, err := newTestStore(t).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if configs == nil || len(configs) != 0 {
		t.Fatalf("configs = %#v, want empty slice", configs)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created, err := s.Create(ctx, sampleState("x"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	removed, err := s.Delete(ctx, created.ID)
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v; want true, nil", removed, err)
	}
	removed, err = s.Delete(ctx, created.ID)
	if err != nil || removed {
		t.Fatalf("second Delete = %v, %v; want false, nil", removed, err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
}
