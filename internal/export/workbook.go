// Package export renders the property portfolio as an xlsx workbook.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/roomportal/backend/internal/schedule"
	"github.com/roomportal/backend/internal/storage/models"
)

// Sheet names.
const (
	PropertiesSheet = "Propiedades"
	RoomsSheet      = "Habitaciones"
)

// PropertiesHeader is the header row of the properties sheet.
var PropertiesHeader = []string{
	"ID",
	"Dirección",
	"Ciudad",
	"Habitaciones",
	"Disponibles",
	"Días de limpieza",
	"Horario de limpieza",
	"Próxima limpieza",
	"Propietario",
}

// RoomsHeader is the header row of the rooms sheet.
var RoomsHeader = []string{
	"ID propiedad",
	"Dirección",
	"ID habitación",
	"Nombre",
	"Precio",
	"Estado",
	"Características",
}

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Properties renders props as a workbook with one sheet of properties and
// one of rooms. Next cleaning dates are computed with calc at now.
func Properties(props []models.Property, calc *schedule.Calculator, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PropertiesSheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(RoomsSheet); err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeHeader(f, PropertiesSheet, PropertiesHeader, headerStyle); err != nil {
		return nil, err
	}
	if err := writeHeader(f, RoomsSheet, RoomsHeader, headerStyle); err != nil {
		return nil, err
	}

	roomRow := 2
	for i, p := range props {
		var days, hours, next string
		if cfg := p.CleaningConfig; cfg != nil && cfg.Enabled {
			days = strings.Join(cfg.Days, ", ")
			hours = cfg.Hours
		}
		if d := calc.NextDate(p.CleaningConfig, now); d != nil {
			next = *d
		}
		owner := ""
		if p.OwnerID != nil {
			owner = *p.OwnerID
		}

		row := []any{p.ID, p.Address, p.City, len(p.Rooms), p.AvailableRooms(), days, hours, next, owner}
		if err := writeRow(f, PropertiesSheet, i+2, row); err != nil {
			return nil, err
		}

		for _, r := range p.Rooms {
			row := []any{p.ID, p.Address, r.ID, r.Name, r.Price, r.Status, strings.Join(r.Features, ", ")}
			if err := writeRow(f, RoomsSheet, roomRow, row); err != nil {
				return nil, err
			}
			roomRow++
		}
	}

	if err := f.SetColWidth(PropertiesSheet, "A", "B", 30); err != nil {
		return nil, fmt.Errorf("setting column width: %w", err)
	}
	if err := f.SetColWidth(RoomsSheet, "A", "C", 24); err != nil {
		return nil, fmt.Errorf("setting column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	if err := writeRow(f, sheet, 1, cells); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("converting coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("converting coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}
