package service

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportSheet is the name of the worksheet holding the shopping list
const ExportSheet = "Lista"

var exportHeader = []interface{}{"Item", "Quantidade", "Preço unitário", "Subtotal", "Comprado"}

// ExportShoppingList renders the list as a spreadsheet. The caller closes the file.
func ExportShoppingList(view *ShoppingListView) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), ExportSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &exportHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, item := range view.Items {
		var unitPrice interface{} = ""
		if item.UnitPrice != nil {
			unitPrice = item.UnitPrice.InexactFloat64()
		}
		checked := "Não"
		if item.Checked {
			checked = "Sim"
		}

		values := []interface{}{item.Name, item.Quantity, unitPrice, item.Subtotal.InexactFloat64(), checked}
		if err := writeRow(f, row, values); err != nil {
			_ = f.Close()
			return nil, err
		}
		row++
	}

	total := []interface{}{"Total", "", "", view.Total.InexactFloat64(), ""}
	if err := writeRow(f, row, total); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(ExportSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
