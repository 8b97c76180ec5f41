package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/Simplici0/costcalc/internal/model"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func mustCalculate(t *testing.T, state model.FormState) model.CalculationResult {
	t.Helper()
	result, err := Calculate(state)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	return result
}

func TestRowTotal_RoundsToCents(t *testing.T) {
	nearlyEqual(t, "3.333 x 3", RowTotal(3.333, 3), 10)
	nearlyEqual(t, "1.005 x 1", RowTotal(1.005, 1), 1.01)
	nearlyEqual(t, "0 x 5", RowTotal(0, 5), 0)
}

func TestDose_MilkIsMlPerLitre(t *testing.T) {
	d := Dose(model.IngredientInput{Ingredient: model.Milk, Dose: 5, PricePerUnit: 80}, 100)

	nearlyEqual(t, "needed", d.Needed, 0.5)
	nearlyEqual(t, "cost", d.Cost, 40)
}

func TestDose_StarterUsesPackagePrice(t *testing.T) {
	d := Dose(model.IngredientInput{Ingredient: model.Starter, Dose: 2, PricePerUnit: 300, PackageSize: 1000}, 50)

	nearlyEqual(t, "needed", d.Needed, 100)
	nearlyEqual(t, "unitCost", d.UnitCost, 0.3)
	nearlyEqual(t, "cost", d.Cost, 30)
}

func TestDose_NonPositivePackageSizeCountsAsOne(t *testing.T) {
	for _, size := range []float64{0, -10} {
		d := Dose(model.IngredientInput{Ingredient: model.Inulin, Dose: 1, PricePerUnit: 4, PackageSize: size}, 10)
		nearlyEqual(t, "unitCost", d.UnitCost, 4)
		nearlyEqual(t, "cost", d.Cost, 40)
	}
}

func TestCalculate_UnitEconomics(t *testing.T) {
	state := model.FormState{
		BatchSize:    10,
		SellingPrice: 150,
		Items: map[model.Category][]model.LineItem{
			model.Packaging:    {{Name: "Банка", Price: 20, Quantity: 10}},
			model.RawMaterials: {{Name: "Молоко", Price: 800, Quantity: 1}},
			model.Rent:         {},
		},
	}

	result := mustCalculate(t, state)

	nearlyEqual(t, "total", result.TotalCost, 1000)
	nearlyEqual(t, "unit", result.UnitCost, 100)
	nearlyEqual(t, "profit", result.ProfitPerUnit, 50)
	nearlyEqual(t, "margin", result.MarginPercent, 33.33)
	nearlyEqual(t, "packaging", result.CategoryTotals[model.Packaging], 200)
	nearlyEqual(t, "rent", result.CategoryTotals[model.Rent], 0)
	if _, ok := result.CategoryTotals[model.Rent]; !ok {
		t.Fatalf("expected empty category to be reported with 0")
	}
	if result.BatchSize != 10 || result.SellingPrice != 150 {
		t.Fatalf("unexpected echo fields: %+v", result)
	}
}

func TestCalculate_ZeroBatchAndZeroPrice(t *testing.T) {
	result := mustCalculate(t, model.FormState{
		Items: map[model.Category][]model.LineItem{
			model.Other: {{Name: "x", Price: 10, Quantity: 1}},
		},
	})

	nearlyEqual(t, "unit", result.UnitCost, 0)
	nearlyEqual(t, "margin", result.MarginPercent, 0)
	nearlyEqual(t, "profit", result.ProfitPerUnit, 0)
	nearlyEqual(t, "total", result.TotalCost, 10)
}

func TestCalculate_FoldsSeparateIngredientsIntoRawMaterials(t *testing.T) {
	state := model.FormState{
		ContainerType: 0.5,
		BatchSize:     100,
		SellingPrice:  100,
		Items: map[model.Category][]model.LineItem{
			model.RawMaterials: {{Name: "Сахар", Price: 10, Quantity: 2}},
		},
		Ingredients: []model.IngredientInput{
			{Ingredient: model.Milk, Dose: 1000, PricePerUnit: 80},
			{Ingredient: model.Starter, Dose: 2, PricePerUnit: 300, PackageSize: 1000},
		},
	}

	result := mustCalculate(t, state)

	// 50 l of milk at 80 plus 100 g of starter at 0.3 plus 20 of sugar.
	nearlyEqual(t, "raw", result.CategoryTotals[model.RawMaterials], 4050)
	nearlyEqual(t, "total", result.TotalCost, 4050)
	nearlyEqual(t, "unit", result.UnitCost, 40.5)
	if len(state.Items[model.RawMaterials]) != 1 {
		t.Fatalf("Calculate mutated the submitted items")
	}
}

func TestCalculate_OverflowIsAnError(t *testing.T) {
	overflowing := []model.FormState{
		{
			BatchSize: 1,
			Items: map[model.Category][]model.LineItem{
				model.Packaging: {{Name: "Банка", Price: 1e200, Quantity: 1e200}},
			},
		},
		{
			ContainerType: 1e300,
			BatchSize:     1000,
			Items:         map[model.Category][]model.LineItem{},
			Ingredients:   []model.IngredientInput{{Ingredient: model.Milk, Dose: 1e300, PricePerUnit: 1}},
		},
	}
	for i, state := range overflowing {
		if _, err := Calculate(state); !errors.Is(err, ErrNotFinite) {
			t.Fatalf("case %d: err = %v, want ErrNotFinite", i, err)
		}
	}
}

func TestRowTotal_OverflowDoesNotPanic(t *testing.T) {
	if got := RowTotal(1e200, 1e200); !math.IsInf(got, 1) {
		t.Fatalf("RowTotal = %v, want +Inf", got)
	}
}
