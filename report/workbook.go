package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"contractimport/importer"
)

const (
	sheetContracts = "Contracts"
	sheetRecords   = "Records"
	sheetSections  = "Sections"
)

// WriteWorkbook saves the preview as an xlsx workbook for offline review.
func WriteWorkbook(path string, p *Preview) error {
	f := excelize.NewFile()
	defer f.Close()

	// Стиль заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	contractRows := make([][]any, 0, len(p.Contracts))
	for _, c := range p.Contracts {
		contractRows = append(contractRows, []any{
			c.ContractNo, string(c.Status), c.Section.Name, c.Section.Destination,
			len(c.Records), len(c.Shipments()), c.TotalContainers, c.TotalWeight.InexactFloat64(),
			c.POL, c.POD, c.Currency(), c.ProductSummary(),
		})
	}
	if err := writeSheet(f, sheetContracts, headerStyle, []string{
		"Contract", "Status", "Section", "Destination", "Records", "Shipments",
		"Containers", "Weight", "POL", "POD", "Currency", "Products",
	}, contractRows); err != nil {
		return err
	}

	recordRows := make([][]any, 0, len(p.Records))
	for _, r := range p.Records {
		recordRows = append(recordRows, []any{
			r.LineNo, r.SN, r.BaseNumber, shipmentLabel(r), string(r.Status), r.StatusText,
			r.ProductSummary(), r.TotalContainers, r.TotalWeight.InexactFloat64(),
			r.POL, r.POD, importer.FormatDate(r.ETA), r.Carrier, r.TrackingRef,
			r.Balance.InexactFloat64(), r.BalanceCurrency, r.FreeTimeDays, r.Section.Name, r.DocFolder,
		})
	}
	if err := writeSheet(f, sheetRecords, headerStyle, []string{
		"Line", "SN", "Base", "Kind", "Status", "Status Text", "Products", "Containers", "Weight",
		"POL", "POD", "ETA", "Carrier", "Tracking", "Balance", "Currency", "Free Days", "Section", "Folder",
	}, recordRows); err != nil {
		return err
	}

	sectionRows := make([][]any, 0, len(p.Sections))
	for _, s := range p.Sections {
		sectionRows = append(sectionRows, []any{
			s.Name, s.Destination, s.BranchID, s.Records, s.Shipments, s.Pending,
			s.Contracts, s.ActiveContracts, s.PendingContracts,
		})
	}
	if err := writeSheet(f, sheetSections, headerStyle, []string{
		"Section", "Destination", "Branch", "Records", "Shipments", "Pending",
		"Contracts", "Active", "Pending Contracts",
	}, sectionRows); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheetContracts); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, headerStyle int, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(name, cell, header)
		f.SetCellStyle(name, cell, cell, headerStyle)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+1, err)
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(name, col, col, 15)
	}
	return nil
}

func shipmentLabel(r *importer.ParsedRecord) string {
	if r.IsShipment {
		return "shipment"
	}
	return "pending"
}
