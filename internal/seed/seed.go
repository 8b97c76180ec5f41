package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/costcalc/internal/model"
	"github.com/Simplici0/costcalc/internal/store"
)

// DemoName is the name of the configuration inserted by Run.
const DemoName = "Йогурт классический"

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run inserts a demo configuration into an empty database. It is a no-op
// once any configuration exists.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	s := store.New(db)

	n, err := s.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("check existing configurations: %w", err)
	}
	if n > 0 {
		return Stats{}, nil
	}

	if _, err := s.Create(ctx, Demo()); err != nil {
		return Stats{}, fmt.Errorf("insert demo configuration: %w", err)
	}
	return Stats{Inserts: 1}, nil
}

// Demo returns a small, fully filled form: 100 half-litre jars of yogurt.
func Demo() model.FormState {
	return model.FormState{
		Name:          DemoName,
		ContainerType: 0.5,
		BatchSize:     100,
		TotalVolume:   50,
		SellingPrice:  120,
		Items: map[model.Category][]model.LineItem{
			model.RawMaterials: {
				{Name: "Молоко", Price: 85, Quantity: 50},
				{Name: "Закваска", Price: 4, Quantity: 5},
			},
			model.Packaging: {
				{Name: "Банка 0.5 л", Price: 12, Quantity: 100},
				{Name: "Крышка", Price: 2.5, Quantity: 100},
			},
			model.Logistics: {{Name: "Доставка", Price: 600, Quantity: 1}},
			model.Taxes:     {{Name: "Налог с продаж", Price: 360, Quantity: 1}},
			model.Labor:     {{Name: "Технолог", Price: 400, Quantity: 4}},
			model.Rent:      {{Name: "Цех", Price: 500, Quantity: 1}},
			model.Other:     {{Name: "Электроэнергия", Price: 7.5, Quantity: 40}},
		},
	}
}
