// Package form is the view-model of the cost calculator: typed rows per
// category, ingredient controls and the core fields, together with the
// displayed totals that the local calculator keeps in sync.
package form

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Simplici0/costcalc/internal/model"
)

// DefaultName is collected when the configuration name is left empty.
const DefaultName = "Без названия"

var (
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownRow        = errors.New("unknown row")
	ErrUnknownIngredient = errors.New("unknown ingredient")
	ErrUnknownField      = errors.New("unknown field")
)

// RowID identifies a line-item row; ids are never reused within a Form.
type RowID int

// Field names an editable input.
type Field string

const (
	FieldName            Field = "name"
	FieldBatchSize       Field = "batch_size"
	FieldSellingPrice    Field = "selling_price"
	FieldContainerVolume Field = "container_volume"

	FieldPrice    Field = "price"
	FieldQuantity Field = "quantity"

	FieldDose         Field = "dose"
	FieldPricePerUnit Field = "price_per_unit"
	FieldPackageSize  Field = "package_size"
)

// Row is one line item as the user typed it, plus its displayed total.
type Row struct {
	ID       RowID
	Name     string
	Price    string
	Quantity string
	Total    string
}

// IngredientControl holds the inputs and displayed results of one ingredient.
type IngredientControl struct {
	Ingredient   model.Ingredient
	Enabled      bool
	Dose         string
	PricePerUnit string
	PackageSize  string
	Needed       string
	Cost         string
}

// Form is the editable state of the calculator.
type Form struct {
	Name            string
	BatchSize       string
	SellingPrice    string
	ContainerVolume string

	// TotalVolume and RawMaterialsTotal are display values maintained by the calculator.
	TotalVolume       string
	RawMaterialsTotal string

	rows        map[model.Category][]*Row
	ingredients map[model.Ingredient]*IngredientControl
	nextID      RowID
}

// New returns a form with the default product setup and computed totals.
func New() *Form {
	f := &Form{}
	f.reset()
	f.RecomputeAll()
	return f
}

func (f *Form) reset() {
	f.Name = ""
	f.BatchSize = "100"
	f.SellingPrice = "0"
	f.ContainerVolume = "0.5"
	f.rows = make(map[model.Category][]*Row, len(model.Categories))
	f.ingredients = map[model.Ingredient]*IngredientControl{
		model.Milk: {
			Ingredient: model.Milk, Enabled: true,
			Dose: "1000", PricePerUnit: "0",
		},
		model.Starter: {
			Ingredient: model.Starter, Enabled: true,
			Dose: "0.1", PricePerUnit: "0", PackageSize: "50",
		},
		model.Inulin: {
			Ingredient: model.Inulin, Enabled: false,
			Dose: "10", PricePerUnit: "0", PackageSize: "1000",
		},
	}
}

// Reset restores the default form, dropping every row.
func (f *Form) Reset() {
	f.reset()
	f.RecomputeAll()
}

// SetField updates one of the core inputs.
func (f *Form) SetField(field Field, value string) error {
	switch field {
	case FieldName:
		f.Name = value
	case FieldBatchSize:
		f.BatchSize = value
	case FieldSellingPrice:
		f.SellingPrice = value
	case FieldContainerVolume:
		f.ContainerVolume = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// AddRow appends an empty row (price 0, quantity 1) to the category.
func (f *Form) AddRow(cat model.Category) (RowID, error) {
	if !cat.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCategory, cat)
	}
	return f.appendRow(cat, model.LineItem{Quantity: 1}), nil
}

func (f *Form) appendRow(cat model.Category, item model.LineItem) RowID {
	f.nextID++
	row := &Row{
		ID:       f.nextID,
		Name:     item.Name,
		Price:    formatInput(item.Price),
		Quantity: formatInput(item.Quantity),
	}
	f.rows[cat] = append(f.rows[cat], row)
	f.updateRowTotal(row)
	return row.ID
}

// RemoveRow deletes a row from its category.
func (f *Form) RemoveRow(cat model.Category, id RowID) error {
	rows := f.rows[cat]
	for i, row := range rows {
		if row.ID == id {
			f.rows[cat] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%d", ErrUnknownRow, cat, id)
}

// SetRowField updates the name, price or quantity of a row.
func (f *Form) SetRowField(cat model.Category, id RowID, field Field, value string) error {
	row, err := f.row(cat, id)
	if err != nil {
		return err
	}
	switch field {
	case FieldName:
		row.Name = value
	case FieldPrice:
		row.Price = value
	case FieldQuantity:
		row.Quantity = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// SetIngredientField updates a dose, price or package size input.
func (f *Form) SetIngredientField(ing model.Ingredient, field Field, value string) error {
	ctl, ok := f.ingredients[ing]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIngredient, ing)
	}
	switch field {
	case FieldDose:
		ctl.Dose = value
	case FieldPricePerUnit:
		ctl.PricePerUnit = value
	case FieldPackageSize:
		ctl.PackageSize = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// SetIngredientEnabled toggles whether an ingredient is part of the recipe.
func (f *Form) SetIngredientEnabled(ing model.Ingredient, enabled bool) error {
	ctl, ok := f.ingredients[ing]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownIngredient, ing)
	}
	ctl.Enabled = enabled
	return nil
}

// Rows returns a copy of the rows of a category in display order.
func (f *Form) Rows(cat model.Category) []Row {
	rows := make([]Row, 0, len(f.rows[cat]))
	for _, row := range f.rows[cat] {
		rows = append(rows, *row)
	}
	return rows
}

// Row returns a copy of a single row.
func (f *Form) Row(cat model.Category, id RowID) (Row, bool) {
	row, err := f.row(cat, id)
	if err != nil {
		return Row{}, false
	}
	return *row, true
}

// Ingredient returns a copy of an ingredient control.
func (f *Form) Ingredient(ing model.Ingredient) (IngredientControl, bool) {
	ctl, ok := f.ingredients[ing]
	if !ok {
		return IngredientControl{}, false
	}
	return *ctl, true
}

func (f *Form) row(cat model.Category, id RowID) (*Row, error) {
	for _, row := range f.rows[cat] {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%d", ErrUnknownRow, cat, id)
}

// Load replaces the form contents with a saved configuration.
//
// Every category is cleared before the saved rows are added. Ingredient
// controls are restored from the saved ingredient inputs; a configuration
// without any disables every ingredient, since its raw_materials rows
// already carry those costs.
func (f *Form) Load(cfg model.SavedConfiguration) {
	f.Name = cfg.Name
	f.BatchSize = fmt.Sprint(cfg.BatchSize)
	f.SellingPrice = formatInput(cfg.SellingPrice)
	if cfg.ContainerType > 0 {
		f.ContainerVolume = formatInput(cfg.ContainerType)
	}

	f.rows = make(map[model.Category][]*Row, len(model.Categories))
	for _, cat := range model.Ordered(cfg.Items) {
		if !cat.Valid() {
			continue
		}
		for _, item := range cfg.Items[cat] {
			f.appendRow(cat, item)
		}
	}
	f.loadIngredients(cfg.Ingredients)
	f.updateTotalVolume()
	f.calculateIngredients()
}

func (f *Form) loadIngredients(inputs []model.IngredientInput) {
	for _, ctl := range f.ingredients {
		ctl.Enabled = false
	}
	for _, in := range inputs {
		ctl, ok := f.ingredients[in.Ingredient]
		if !ok {
			continue
		}
		ctl.Enabled = true
		ctl.Dose = formatInput(in.Dose)
		ctl.PricePerUnit = formatInput(in.PricePerUnit)
		if !in.Ingredient.ByVolume() {
			ctl.PackageSize = formatInput(in.PackageSize)
		}
	}
}

// Snapshot is the full set of displayed values.
type Snapshot struct {
	TotalVolume       string
	RawMaterialsTotal string
	Rows              map[model.Category][]Row
	Ingredients       []IngredientControl
}

// Snapshot copies every displayed value.
func (f *Form) Snapshot() Snapshot {
	s := Snapshot{
		TotalVolume:       f.TotalVolume,
		RawMaterialsTotal: f.RawMaterialsTotal,
		Rows:              make(map[model.Category][]Row, len(model.Categories)),
	}
	for _, cat := range model.Categories {
		s.Rows[cat] = f.Rows(cat)
	}
	for _, ing := range model.Ingredients {
		s.Ingredients = append(s.Ingredients, *f.ingredients[ing])
	}
	return s
}

// formatInput renders a number the way an input field shows it.
func formatInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
