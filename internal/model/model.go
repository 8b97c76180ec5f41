package model

import (
	"encoding/json"
	"sort"
)

// Category is a stable cost bucket key.
type Category string

const (
	RawMaterials Category = "raw_materials"
	Packaging    Category = "packaging"
	Logistics    Category = "logistics"
	Taxes        Category = "taxes"
	Labor        Category = "labor"
	Rent         Category = "rent"
	Other        Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{RawMaterials, Packaging, Logistics, Taxes, Labor, Rent, Other}

var categoryTitles = map[Category]string{
	RawMaterials: "Сырье",
	Packaging:    "Упаковка",
	Logistics:    "Логистика",
	Taxes:        "Налоги",
	Labor:        "Работа",
	Rent:         "Аренда",
	Other:        "Другие расходы",
}

var categoryIcons = map[Category]string{
	RawMaterials: "🥛",
	Packaging:    "📦",
	Logistics:    "🚚",
	Taxes:        "💰",
	Labor:        "👷",
	Rent:         "🏢",
	Other:        "📋",
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := categoryTitles[c]
	return ok
}

// Title returns the plain display name, or the raw key for unknown categories.
func (c Category) Title() string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// Label returns the result-row label with its icon, or the raw key for unknown categories.
func (c Category) Label() string {
	if t, ok := categoryTitles[c]; ok {
		return categoryIcons[c] + " " + t
	}
	return string(c)
}

// Ingredient identifies one of the dosage-based raw materials.
type Ingredient string

const (
	Milk    Ingredient = "milk"
	Starter Ingredient = "starter"
	Inulin  Ingredient = "inulin"
)

// Ingredients lists the ingredients in display order.
var Ingredients = []Ingredient{Milk, Starter, Inulin}

var ingredientTitles = map[Ingredient]string{
	Milk:    "Молоко",
	Starter: "Закваска",
	Inulin:  "Инулин",
}

// Title returns the line-item name used when the ingredient is submitted as a raw material.
func (i Ingredient) Title() string {
	if t, ok := ingredientTitles[i]; ok {
		return t
	}
	return string(i)
}

// ByVolume reports whether the dose is given in ml per litre (as opposed to grams per litre).
func (i Ingredient) ByVolume() bool {
	return i == Milk
}

// LineItem is a named price x quantity entry within a category.
type LineItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// IngredientInput carries the raw dosage inputs of an enabled ingredient.
type IngredientInput struct {
	Ingredient   Ingredient `json:"ingredient"`
	Dose         float64    `json:"dose"`
	PricePerUnit float64    `json:"price_per_unit"`
	PackageSize  float64    `json:"package_size,omitempty"`
}

// FormState is the collected form submitted to the calculation and persistence endpoints.
type FormState struct {
	Name          string                  `json:"name"`
	ContainerType float64                 `json:"container_type"`
	BatchSize     int                     `json:"batch_size"`
	TotalVolume   float64                 `json:"total_volume"`
	SellingPrice  float64                 `json:"selling_price"`
	Items         map[Category][]LineItem `json:"items"`
	Ingredients   []IngredientInput       `json:"ingredients,omitempty"`
}

// CalculationResult is the cost and profit breakdown returned by /api/calculate.
type CalculationResult struct {
	TotalCost      float64              `json:"total_cost"`
	CategoryTotals map[Category]float64 `json:"category_totals"`
	UnitCost       float64              `json:"unit_cost"`
	ProfitPerUnit  float64              `json:"profit_per_unit"`
	MarginPercent  float64              `json:"margin_percent"`
	BatchSize      int                  `json:"batch_size"`
	SellingPrice   float64              `json:"selling_price"`
}

// SavedConfiguration is a persisted FormState snapshot.
type SavedConfiguration struct {
	FormState
	ID        int64     `json:"id"`
	CreatedAt Timestamp `json:"created_at"`
}

// StatusResponse is the body returned by save and delete.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the body returned for failed lookups.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Ordered returns the keys of m: fixed categories in display order, then unknown keys sorted.
func Ordered[V any](m map[Category]V) []Category {
	keys := make([]Category, 0, len(m))
	for _, cat := range Categories {
		if _, ok := m[cat]; ok {
			keys = append(keys, cat)
		}
	}
	extra := make([]Category, 0)
	for cat := range m {
		if !cat.Valid() {
			extra = append(extra, cat)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(keys, extra...)
}

// UnmarshalJSON decodes a line item; a missing quantity counts as 1.
func (li *LineItem) UnmarshalJSON(b []byte) error {
	type plain LineItem
	item := plain{Quantity: 1}
	if err := json.Unmarshal(b, &item); err != nil {
		return err
	}
	*li = LineItem(item)
	return nil
}
