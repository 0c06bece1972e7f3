// Package table loads the socioeconomic indicator workbook.
//
// The workbook has one row per country. The sheet is located by its header
// row, so extra title rows above the data are tolerated. Recognized column
// headers (case-insensitive, spaces and underscores interchangeable):
//
//	country, income_group, insurance_penetration, reserves, gdp_today,
//	government_debt, gdp_industry_share, supply_chain_resilience,
//	risk_quality_index, competitiveness_index, hazard_exposure_index
//
// The hazard_exposure_index column only appears in the extended variant of
// the table. Empty or non-numeric cells load as NaN and surface later as
// missing indicator data.
package table

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bielim/country-risk-etl/internal/domain"
)

// Base and extended workbook filenames looked up in the data directory.
const (
	BaseFilename     = "economic_indicators.xlsx"
	ExtendedFilename = "economic_indicators_extended.xlsx"
)

// columnExtended marks the column that distinguishes the extended table.
const columnExtended = "hazard_exposure_index"

// Resolve picks the indicator workbook to load. An explicit path wins; with
// none given, the extended variant in dataDir is preferred over the base one.
// Returns domain.ErrNoTable when neither exists.
func Resolve(explicitPath, dataDir string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("indicator table %s: %w", explicitPath, domain.ErrNoTable)
		}
		return explicitPath, nil
	}

	for _, name := range []string{ExtendedFilename, BaseFilename} {
		path := filepath.Join(dataDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no indicator table in %s: %w", dataDir, domain.ErrNoTable)
}

// Load reads an indicator workbook into a lookup table.
func Load(path string) (*domain.IndicatorTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open indicator table: %w", err)
	}
	defer f.Close()

	rows, err := findDataSheet(f)
	if err != nil {
		return nil, fmt.Errorf("indicator table %s: %w", path, err)
	}

	headerIdx, columns := locateHeader(rows)
	if columns == nil {
		return nil, fmt.Errorf("indicator table %s: no header row with a country column", path)
	}

	var indicatorRows []domain.IndicatorRow
	for _, row := range rows[headerIdx+1:] {
		r, ok := parseRow(row, columns)
		if ok {
			indicatorRows = append(indicatorRows, r)
		}
	}
	if len(indicatorRows) == 0 {
		return nil, fmt.Errorf("indicator table %s: no country rows", path)
	}

	_, extended := columns[columnExtended]
	return domain.NewIndicatorTable(indicatorRows, extended, path), nil
}

// findDataSheet returns the rows of the first sheet containing a country
// header. Workbooks sometimes carry documentation sheets ahead of the data.
func findDataSheet(f *excelize.File) ([][]string, error) {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if _, cols := locateHeader(rows); cols != nil {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("no sheet with indicator data")
}

// locateHeader scans the first few rows for one containing a "country"
// column and returns its index plus a header-name → column-index map.
func locateHeader(rows [][]string) (int, map[string]int) {
	limit := len(rows)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		columns := make(map[string]int, len(rows[i]))
		for col, cell := range rows[i] {
			key := normalizeHeader(cell)
			if key != "" {
				columns[key] = col
			}
		}
		if _, ok := columns["country"]; ok {
			return i, columns
		}
	}
	return 0, nil
}

func normalizeHeader(cell string) string {
	cell = strings.ToLower(strings.TrimSpace(cell))
	return strings.ReplaceAll(cell, " ", "_")
}

// parseRow maps one spreadsheet row to an IndicatorRow. Rows without a
// country name are skipped.
func parseRow(row []string, columns map[string]int) (domain.IndicatorRow, bool) {
	country := strings.TrimSpace(cellAt(row, columns, "country"))
	if country == "" {
		return domain.IndicatorRow{}, false
	}

	return domain.IndicatorRow{
		Country:               country,
		IncomeGroup:           numericCell(row, columns, "income_group"),
		InsurancePenetration:  numericCell(row, columns, "insurance_penetration"),
		Reserves:              numericCell(row, columns, "reserves"),
		GDPToday:              numericCell(row, columns, "gdp_today"),
		GovernmentDebt:        numericCell(row, columns, "government_debt"),
		IndustryShareGDP:      numericCell(row, columns, "gdp_industry_share"),
		SupplyChainResilience: numericCell(row, columns, "supply_chain_resilience"),
		RiskQualityIndex:      numericCell(row, columns, "risk_quality_index"),
		CompetitivenessIndex:  numericCell(row, columns, "competitiveness_index"),
		HazardExposureIndex:   numericCell(row, columns, columnExtended),
	}, true
}

func cellAt(row []string, columns map[string]int, name string) string {
	col, ok := columns[name]
	if !ok || col >= len(row) {
		return ""
	}
	return row[col]
}

// numericCell parses a cell as float64. Empty cells, sentinel text ("NA",
// "n/a", "-"), and unparseable values all load as NaN.
func numericCell(row []string, columns map[string]int, name string) float64 {
	s := strings.TrimSpace(cellAt(row, columns, name))
	switch strings.ToLower(s) {
	case "", "na", "n/a", "-":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
