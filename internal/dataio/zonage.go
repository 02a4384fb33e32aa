package dataio

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"dvfpipe/internal/pricing"
)

// ReadZonage reads the zonage ABC classification workbook: one row per
// commune with its pricing tier. Returns commune code (5 characters,
// re-padded) to tier.
func ReadZonage(path string) (map[string]pricing.Zone, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open zonage workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read zonage sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("zonage sheet %q is empty", sheet)
	}

	codeCol, zoneCol := -1, -1
	for i, name := range rows[0] {
		switch name {
		case "Code Commune":
			codeCol = i
		case "Zone ABC":
			zoneCol = i
		}
	}
	if codeCol == -1 || zoneCol == -1 {
		return nil, fmt.Errorf("zonage sheet %q: missing required columns Code Commune / Zone ABC", sheet)
	}

	zonage := make(map[string]pricing.Zone, len(rows)-1)
	for _, row := range rows[1:] {
		if codeCol >= len(row) || zoneCol >= len(row) {
			continue
		}
		code := pricing.PadCommuneCode(row[codeCol])
		label := row[zoneCol]
		if code == "" || label == "" {
			continue
		}
		zonage[code] = pricing.ParseZoneLabel(label)
	}
	slog.Info("read zonage table", "communes", len(zonage))
	return zonage, nil
}
