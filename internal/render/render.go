// Package render turns calculation results and saved configurations into
// the HTML fragments shown by the calculator.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/Simplici0/costcalc/internal/model"
	"github.com/Simplici0/costcalc/internal/money"
)

const (
	ProfitPositive = "profit-positive"
	ProfitNegative = "profit-negative"

	// EmptyConfigurations is shown when nothing has been saved yet.
	EmptyConfigurations = "Нет сохраненных конфигураций"

	// ruDateTime matches toLocaleString("ru-RU").
	ruDateTime = "02.01.2006, 15:04:05"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// CategoryRow is one line of the per-category breakdown.
type CategoryRow struct {
	Key   model.Category
	Label string
	Value string
}

// ResultView is a CalculationResult formatted for display.
type ResultView struct {
	TotalCost     string
	UnitCost      string
	SellingPrice  string
	ProfitPerUnit string
	Margin        string
	BatchSize     int
	BatchProfit   string
	ProfitClass   string
	Categories    []CategoryRow
}

// Results formats a calculation result. Categories totalling zero are left out.
func Results(r model.CalculationResult) ResultView {
	view := ResultView{
		TotalCost:     money.Format(r.TotalCost),
		UnitCost:      money.Format(r.UnitCost),
		SellingPrice:  money.Format(r.SellingPrice),
		ProfitPerUnit: money.Format(r.ProfitPerUnit),
		Margin:        money.Percent(r.MarginPercent),
		BatchSize:     r.BatchSize,
		BatchProfit:   money.Format(r.ProfitPerUnit * float64(r.BatchSize)),
		ProfitClass:   ProfitPositive,
	}
	if r.ProfitPerUnit < 0 {
		view.ProfitClass = ProfitNegative
	}
	for _, cat := range model.Ordered(r.CategoryTotals) {
		value := r.CategoryTotals[cat]
		// Negative totals (refunds, credits) are listed; only empty ones are hidden.
		if value == 0 {
			continue
		}
		view.Categories = append(view.Categories, CategoryRow{
			Key:   cat,
			Label: cat.Label(),
			Value: money.Format(value),
		})
	}
	return view
}

// ResultsHTML renders the result cards.
func ResultsHTML(r model.CalculationResult) (string, error) {
	return execute("results", Results(r))
}

// ConfigurationItem is one saved configuration in the listing.
type ConfigurationItem struct {
	ID           int64
	Name         string
	CreatedAt    string
	BatchSize    int
	SellingPrice string
}

// ConfigurationList is the listing shown in the saved-configurations modal.
type ConfigurationList struct {
	Items        []ConfigurationItem
	EmptyMessage string
}

// Configurations formats saved configurations, showing creation times in loc.
func Configurations(configs []model.SavedConfiguration, loc *time.Location) ConfigurationList {
	if loc == nil {
		loc = time.Local
	}
	list := ConfigurationList{EmptyMessage: EmptyConfigurations}
	for _, cfg := range configs {
		list.Items = append(list.Items, ConfigurationItem{
			ID:           cfg.ID,
			Name:         cfg.Name,
			CreatedAt:    FormatDateTime(cfg.CreatedAt.Time, loc),
			BatchSize:    cfg.BatchSize,
			SellingPrice: strconv.FormatFloat(cfg.SellingPrice, 'f', -1, 64),
		})
	}
	return list
}

// ConfigurationsHTML renders the saved-configurations listing.
func ConfigurationsHTML(configs []model.SavedConfiguration, loc *time.Location) (string, error) {
	return execute("configurations", Configurations(configs, loc))
}

// FormatDateTime formats t in the Russian locale, e.g. "01.03.2024, 09:00:00".
func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(ruDateTime)
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
