package form

import (
	"fmt"

	"github.com/Simplici0/costcalc/internal/model"
	"github.com/Simplici0/costcalc/internal/pricing"
)

// Variant selects how ingredients are submitted.
type Variant int

const (
	// Aggregated sends each enabled ingredient as a raw_materials line item
	// priced at its computed cost, ahead of the rows typed into raw_materials.
	Aggregated Variant = iota
	// Separate sends the ingredient inputs as they are and lets the service
	// derive their cost; raw_materials carries the user's rows.
	Separate
)

func (v Variant) String() string {
	if v == Separate {
		return "separate"
	}
	return "aggregated"
}

// ParseVariant maps "aggregated" or "separate" to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "aggregated", "":
		return Aggregated, nil
	case "separate":
		return Separate, nil
	}
	return Aggregated, fmt.Errorf("unknown variant %q", s)
}

// Collect reads the form into the state submitted to the service.
//
// Rows with an empty name are skipped and unparsable numbers count as 0.
// Collect does not change any displayed value.
func (f *Form) Collect(variant Variant) model.FormState {
	containerVolume := parseNumber(f.ContainerVolume)
	batchSize := parseCount(f.BatchSize)
	totalVolume := pricing.TotalVolume(containerVolume, batchSize)

	name := f.Name
	if name == "" {
		name = DefaultName
	}

	state := model.FormState{
		Name:          name,
		ContainerType: containerVolume,
		BatchSize:     batchSize,
		TotalVolume:   totalVolume,
		SellingPrice:  parseNumber(f.SellingPrice),
		Items:         make(map[model.Category][]model.LineItem, len(model.Categories)),
	}

	for _, cat := range model.Categories {
		rows := f.collectRows(cat)
		if cat == model.RawMaterials && variant == Aggregated {
			rows = append(pricing.IngredientItems(f.ingredientInputs(), totalVolume), rows...)
		}
		state.Items[cat] = rows
	}
	if variant == Separate {
		state.Ingredients = f.ingredientInputs()
	}
	return state
}

func (f *Form) collectRows(cat model.Category) []model.LineItem {
	items := make([]model.LineItem, 0, len(f.rows[cat]))
	for _, row := range f.rows[cat] {
		if row.Name == "" {
			continue
		}
		items = append(items, model.LineItem{
			Name:     row.Name,
			Price:    parseNumber(row.Price),
			Quantity: parseNumber(row.Quantity),
		})
	}
	return items
}
