package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/costcalc/internal/model"
	"github.com/Simplici0/costcalc/internal/money"
)

// Dosage contains the absolute quantity and cost derived from an ingredient dose.
type Dosage struct {
	// Needed is litres for milk and grams for starter and inulin.
	Needed   float64
	UnitCost float64
	Cost     float64
}

// TotalVolume returns the batch volume in litres.
func TotalVolume(containerVolume float64, batchSize int) float64 {
	return containerVolume * float64(batchSize)
}

// RowTotal returns price x quantity rounded to two places.
func RowTotal(price, quantity float64) float64 {
	return money.Round(price * quantity)
}

// Dose converts an ingredient dose per litre into the quantity and cost for totalVolume litres.
//
// Milk is dosed in ml per litre and priced per litre. Starter and inulin are
// dosed in grams per litre and priced per package of PackageSize grams; a
// non-positive package size counts as 1.
func Dose(in model.IngredientInput, totalVolume float64) Dosage {
	if in.Ingredient.ByVolume() {
		needed := (in.Dose / 1000.0) * totalVolume
		return Dosage{
			Needed:   needed,
			UnitCost: in.PricePerUnit,
			Cost:     needed * in.PricePerUnit,
		}
	}

	packageSize := in.PackageSize
	if packageSize <= 0 {
		packageSize = 1
	}
	needed := in.Dose * totalVolume
	unitCost := in.PricePerUnit / packageSize
	return Dosage{
		Needed:   needed,
		UnitCost: unitCost,
		Cost:     needed * unitCost,
	}
}

// IngredientItems turns enabled ingredient inputs into raw-material line items priced at their cost.
func IngredientItems(inputs []model.IngredientInput, totalVolume float64) []model.LineItem {
	items := make([]model.LineItem, 0, len(inputs))
	for _, in := range inputs {
		d := Dose(in, totalVolume)
		items = append(items, model.LineItem{
			Name:     in.Ingredient.Title(),
			Price:    d.Cost,
			Quantity: 1,
		})
	}
	return items
}

// ErrNotFinite is returned when an amount overflows float64.
var ErrNotFinite = errors.New("amount is not a finite number")

// Calculate computes the category totals and unit economics of a submitted form.
//
// Ingredients sent separately are folded into raw_materials before summing.
// Amounts that overflow float64 yield ErrNotFinite.
func Calculate(state model.FormState) (model.CalculationResult, error) {
	items := state.Items
	if len(state.Ingredients) > 0 {
		items = make(map[model.Category][]model.LineItem, len(state.Items)+1)
		for cat, rows := range state.Items {
			items[cat] = rows
		}
		volume := state.TotalVolume
		if volume == 0 {
			volume = TotalVolume(state.ContainerType, state.BatchSize)
		}
		raw := append([]model.LineItem{}, IngredientItems(state.Ingredients, volume)...)
		items[model.RawMaterials] = append(raw, items[model.RawMaterials]...)
	}

	total := decimal.Zero
	categoryTotals := make(map[model.Category]float64, len(items))
	for _, cat := range model.Ordered(items) {
		categoryTotal := decimal.Zero
		for _, item := range items[cat] {
			if !money.Finite(item.Price) || !money.Finite(item.Quantity) {
				return model.CalculationResult{}, fmt.Errorf("%s %q: %w", cat, item.Name, ErrNotFinite)
			}
			categoryTotal = categoryTotal.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromFloat(item.Quantity)))
		}
		categoryTotals[cat] = categoryTotal.Round(2).InexactFloat64()
		if !money.Finite(categoryTotals[cat]) {
			return model.CalculationResult{}, fmt.Errorf("%s total: %w", cat, ErrNotFinite)
		}
		total = total.Add(categoryTotal)
	}

	unitCost := decimal.Zero
	if state.BatchSize > 0 {
		unitCost = total.Div(decimal.NewFromInt(int64(state.BatchSize)))
	}

	sellingPrice := decimal.NewFromFloat(state.SellingPrice)
	profit := sellingPrice.Sub(unitCost)
	margin := decimal.Zero
	if sellingPrice.IsPositive() {
		margin = profit.Div(sellingPrice).Mul(decimal.NewFromInt(100))
	}

	result := model.CalculationResult{
		TotalCost:      total.Round(2).InexactFloat64(),
		CategoryTotals: categoryTotals,
		UnitCost:       unitCost.Round(2).InexactFloat64(),
		ProfitPerUnit:  profit.Round(2).InexactFloat64(),
		MarginPercent:  margin.Round(2).InexactFloat64(),
		BatchSize:      state.BatchSize,
		SellingPrice:   state.SellingPrice,
	}
	for _, v := range []float64{result.TotalCost, result.UnitCost, result.ProfitPerUnit, result.MarginPercent} {
		if !money.Finite(v) {
			return model.CalculationResult{}, fmt.Errorf("result: %w", ErrNotFinite)
		}
	}
	return result, nil
}
