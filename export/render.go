// Package export renders policy records to spreadsheets and stores the files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/ShashankBhake/st-shield-backend/models"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Policies"

var header = []string{
	"Policy ID", "Order ID", "Payment ID", "Plan", "Amount (INR)", "Currency",
	"Name", "Email", "Phone", "College", "Issued At (UTC)", "User Data",
}

func ContentType(format string) string {
	if format == models.ExportFormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render writes policies in the given format.
func Render(w io.Writer, format string, policies []models.Policy) error {
	switch format {
	case models.ExportFormatXLSX:
		return RenderXLSX(w, policies)
	case models.ExportFormatCSV:
		return RenderCSV(w, policies)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func row(p models.Policy) []interface{} {
	c := p.Contact()
	return []interface{}{
		p.PolicyID,
		p.OrderID,
		p.PaymentID,
		p.PlanType,
		float64(p.Amount) / 100,
		p.Currency,
		c.DisplayName(),
		c.Email,
		c.Phone,
		c.College,
		p.Timestamp.UTC().Format(time.RFC3339),
		string(p.UserData),
	}
}

func RenderXLSX(w io.Writer, policies []models.Policy) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range policies {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(p)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func RenderCSV(w io.Writer, policies []models.Policy) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range policies {
		values := row(p)
		record := make([]string, len(values))
		for i, v := range values {
			switch t := v.(type) {
			case float64:
				record[i] = fmt.Sprintf("%.2f", t)
			default:
				record[i] = fmt.Sprint(t)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
