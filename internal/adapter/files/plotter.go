package files

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bielim/country-risk-etl/internal/domain"
)

// DataDumpPlotter writes plot-ready CSV files instead of rendering figures,
// so damage distributions can be inspected with any external plotting tool.
type DataDumpPlotter struct {
	outDir string
}

// NewDataDumpPlotter creates a plotter writing into outDir, creating it if
// needed.
func NewDataDumpPlotter(outDir string) *DataDumpPlotter {
	return &DataDumpPlotter{outDir: outDir}
}

// PlotCountry writes one CSV with a row per (peril, event) damage magnitude.
func (p *DataDumpPlotter) PlotCountry(_ context.Context, result domain.CountryRiskResult) error {
	name := fmt.Sprintf("damages_%s.csv", slug(result.Country))
	return p.write(name, []domain.CountryRiskResult{result})
}

// PlotAggregate writes a single CSV covering every country in the list.
func (p *DataDumpPlotter) PlotAggregate(_ context.Context, results []domain.CountryRiskResult) error {
	return p.write("damages_all.csv", results)
}

func (p *DataDumpPlotter) write(name string, results []domain.CountryRiskResult) error {
	if err := os.MkdirAll(p.outDir, 0o755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	f, err := os.Create(filepath.Join(p.outDir, name))
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"country", "peril", "event", "damage"}); err != nil {
		return err
	}
	for _, r := range results {
		for _, h := range r.Hazards {
			for i, d := range h.Damages {
				rec := []string{
					r.Country,
					h.Peril,
					strconv.Itoa(i),
					strconv.FormatFloat(d, 'g', -1, 64),
				}
				if err := w.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	w.Flush()
	return w.Error()
}

func slug(country string) string {
	s := strings.ToLower(strings.TrimSpace(country))
	return strings.ReplaceAll(s, " ", "_")
}
