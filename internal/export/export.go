// Package export writes a saved configuration and its calculation as an
// Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/costcalc/internal/model"
	"github.com/Simplici0/costcalc/internal/money"
	"github.com/Simplici0/costcalc/internal/pricing"
)

// Sheet names.
const (
	ItemsSheet   = "Позиции"
	SummarySheet = "Итог"
)

// ContentType is the MIME type of the written workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var itemsHeader = []any{"Категория", "Название", "Цена", "Количество", "Сумма"}

// Write renders cfg as a workbook with the line items on one sheet and the
// calculated totals on another.
func Write(w io.Writer, cfg model.SavedConfiguration) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ItemsSheet); err != nil {
		return fmt.Errorf("rename items sheet: %w", err)
	}
	if err := writeItems(f, cfg.FormState); err != nil {
		return err
	}

	result, err := pricing.Calculate(cfg.FormState)
	if err != nil {
		return fmt.Errorf("calculate configuration %d: %w", cfg.ID, err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeSummary(f, cfg, result); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeItems(f *excelize.File, state model.FormState) error {
	sw, err := f.NewStreamWriter(ItemsSheet)
	if err != nil {
		return fmt.Errorf("open items sheet: %w", err)
	}
	if err := sw.SetRow("A1", itemsHeader); err != nil {
		return fmt.Errorf("write items header: %w", err)
	}

	row := 2
	for _, cat := range model.Ordered(state.Items) {
		for _, item := range state.Items[cat] {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := []any{cat.Title(), item.Name, item.Price, item.Quantity, pricing.RowTotal(item.Price, item.Quantity)}
			if err := sw.SetRow(cell, values); err != nil {
				return fmt.Errorf("write item row %d: %w", row, err)
			}
			row++
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush items sheet: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, cfg model.SavedConfiguration, r model.CalculationResult) error {
	rows := [][]any{
		{"Название", cfg.Name},
		{"Объем тары, " + money.LitreUnit, cfg.ContainerType},
		{"Количество, " + money.PieceUnit, cfg.BatchSize},
		{"Объем партии, " + money.LitreUnit, cfg.TotalVolume},
		{"Цена продажи, " + money.Currency, cfg.SellingPrice},
		{},
	}
	for _, cat := range model.Ordered(r.CategoryTotals) {
		rows = append(rows, []any{cat.Title(), r.CategoryTotals[cat]})
	}
	rows = append(rows,
		[]any{},
		[]any{"Себестоимость партии", r.TotalCost},
		[]any{"Себестоимость единицы", r.UnitCost},
		[]any{"Прибыль с единицы", r.ProfitPerUnit},
		[]any{"Маржа, %", r.MarginPercent},
	)

	for i, values := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			continue
		}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return nil
}
