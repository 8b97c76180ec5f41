package form

import (
	"math"
	"strconv"
	"strings"

	"github.com/Simplici0/costcalc/internal/model"
	"github.com/Simplici0/costcalc/internal/money"
	"github.com/Simplici0/costcalc/internal/pricing"
)

// parseNumber reads a numeric input; anything unparsable is 0.
func parseNumber(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// parseCount reads an integer input, dropping any fractional part; anything unparsable is 0.
func parseCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return int(parseNumber(raw))
}

func (f *Form) totalVolume() float64 {
	return pricing.TotalVolume(parseNumber(f.ContainerVolume), parseCount(f.BatchSize))
}

// UpdateRowTotal refreshes the displayed total of one row.
func (f *Form) UpdateRowTotal(cat model.Category, id RowID) error {
	row, err := f.row(cat, id)
	if err != nil {
		return err
	}
	f.updateRowTotal(row)
	return nil
}

func (f *Form) updateRowTotal(row *Row) {
	row.Total = money.Format(pricing.RowTotal(parseNumber(row.Price), parseNumber(row.Quantity)))
}

// UpdateTotalVolume refreshes the displayed batch volume.
func (f *Form) UpdateTotalVolume() {
	f.updateTotalVolume()
}

func (f *Form) updateTotalVolume() {
	f.TotalVolume = money.Litres(f.totalVolume(), 1)
}

// CalculateIngredients refreshes the needed quantity and cost of every
// enabled ingredient and the raw materials subtotal. Disabled ingredients
// keep whatever they displayed last.
func (f *Form) CalculateIngredients() {
	f.calculateIngredients()
}

func (f *Form) calculateIngredients() {
	volume := f.totalVolume()
	total := 0.0
	for _, in := range f.ingredientInputs() {
		d := pricing.Dose(in, volume)
		ctl := f.ingredients[in.Ingredient]
		if in.Ingredient.ByVolume() {
			ctl.Needed = money.Litres(d.Needed, 2)
		} else {
			ctl.Needed = money.Grams(d.Needed)
		}
		ctl.Cost = money.Format(d.Cost)
		total += d.Cost
	}
	f.RawMaterialsTotal = money.Format(total)
}

// RecomputeAll refreshes every displayed value.
func (f *Form) RecomputeAll() {
	for _, cat := range model.Categories {
		for _, row := range f.rows[cat] {
			f.updateRowTotal(row)
		}
	}
	f.updateTotalVolume()
	f.calculateIngredients()
}

// ingredientInputs returns the parsed inputs of enabled ingredients in display order.
func (f *Form) ingredientInputs() []model.IngredientInput {
	inputs := make([]model.IngredientInput, 0, len(model.Ingredients))
	for _, ing := range model.Ingredients {
		ctl, ok := f.ingredients[ing]
		if !ok || !ctl.Enabled {
			continue
		}
		in := model.IngredientInput{
			Ingredient:   ing,
			Dose:         parseNumber(ctl.Dose),
			PricePerUnit: parseNumber(ctl.PricePerUnit),
		}
		if !ing.ByVolume() {
			in.PackageSize = parseNumber(ctl.PackageSize)
			if in.PackageSize <= 0 {
				in.PackageSize = 1
			}
		}
		inputs = append(inputs, in)
	}
	return inputs
}
