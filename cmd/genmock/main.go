// Command genmock generates the mock data set for local runs and the
// integration test: indicator workbooks (base and extended variants), a
// country risk results fixture, and the exposure/hazard fixtures the
// calibrate command reads. It uses the actual domain package so the fixtures
// match real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/xuri/excelize/v2"

	"github.com/bielim/country-risk-etl/internal/domain"
	"github.com/bielim/country-risk-etl/internal/table"
)

// mockCountry holds one indicator row plus the hazard simulation shape used
// to synthesize its damage sets.
type mockCountry struct {
	row         domain.IndicatorRow
	eventCount  int
	maxSeverity float64 // peak event damage as a fraction of GDP
}

func mocks() []mockCountry {
	return []mockCountry{
		{
			row: domain.IndicatorRow{
				Country: "Atlantis", IncomeGroup: 1, InsurancePenetration: 12,
				Reserves: 40, GDPToday: 100, GovernmentDebt: 0.3,
				IndustryShareGDP: 0.25, SupplyChainResilience: 80,
				RiskQualityIndex: 70, CompetitivenessIndex: 5.2, HazardExposureIndex: 3,
			},
			eventCount: 25, maxSeverity: 0.15,
		},
		{
			row: domain.IndicatorRow{
				Country: "Lemuria", IncomeGroup: 3, InsurancePenetration: 7,
				Reserves: 5, GDPToday: 40, GovernmentDebt: 0.8,
				IndustryShareGDP: 0.4, SupplyChainResilience: 45,
				RiskQualityIndex: 35, CompetitivenessIndex: 3.1, HazardExposureIndex: 8,
			},
			eventCount: 25, maxSeverity: 0.4,
		},
		{
			row: domain.IndicatorRow{
				Country: "Mu", IncomeGroup: 4, InsurancePenetration: 2,
				Reserves: 1, GDPToday: 8, GovernmentDebt: 0.6,
				IndustryShareGDP: 0.3, SupplyChainResilience: 30,
				RiskQualityIndex: 20, CompetitivenessIndex: 2.4, HazardExposureIndex: 9,
			},
			eventCount: 25, maxSeverity: 0.6,
		},
		{
			// GDP left missing to exercise the World Bank fallback path.
			row: domain.IndicatorRow{
				Country: "Hy-Brasil", IncomeGroup: 2, InsurancePenetration: 6,
				Reserves: 3, GDPToday: math.NaN(), GovernmentDebt: 0.5,
				IndustryShareGDP: 0.35, SupplyChainResilience: 55,
				RiskQualityIndex: 50, CompetitivenessIndex: 3.8, HazardExposureIndex: 6,
			},
			eventCount: 25, maxSeverity: 0.3,
		},
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "data/mock", "output directory for the mock data set")
	seed := flag.Int64("seed", 1, "random seed for the synthetic damage sets")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Fix the clock so AdjustedAt timestamps in downstream runs are
	// reproducible against these fixtures.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	countries := mocks()

	if err := writeWorkbook(filepath.Join(*outDir, table.BaseFilename), countries, false); err != nil {
		return fmt.Errorf("base workbook: %w", err)
	}
	log.Printf("wrote %s", table.BaseFilename)

	if err := writeWorkbook(filepath.Join(*outDir, table.ExtendedFilename), countries, true); err != nil {
		return fmt.Errorf("extended workbook: %w", err)
	}
	log.Printf("wrote %s", table.ExtendedFilename)

	rng := rand.New(rand.NewSource(*seed))
	results := make([]domain.CountryRiskResult, 0, len(countries))
	for i, c := range countries {
		entityRef := fmt.Sprintf("entity_%d.json", i)
		hazardRef := fmt.Sprintf("hazard_%d.json", i)
		damages, err := writeHazardFixtures(*outDir, entityRef, hazardRef, c, rng)
		if err != nil {
			return fmt.Errorf("%s fixtures: %w", c.row.Country, err)
		}
		results = append(results, domain.CountryRiskResult{
			Country: c.row.Country,
			Hazards: []domain.HazardResult{{
				Peril:     domain.PerilTC,
				EntityRef: entityRef,
				HazardRef: hazardRef,
				Damages:   damages,
			}},
		})
		log.Printf("%s: %d events", c.row.Country, len(damages))
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	resultsPath := filepath.Join(*outDir, "results.json")
	if err := os.WriteFile(resultsPath, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	log.Printf("wrote results.json (%d countries)", len(results))
	return nil
}

// workbook column order matches the loader's recognized headers.
var workbookHeaders = []string{
	"country", "income_group", "insurance_penetration", "reserves",
	"gdp_today", "government_debt", "gdp_industry_share",
	"supply_chain_resilience", "risk_quality_index", "competitiveness_index",
}

func writeWorkbook(path string, countries []mockCountry, extended bool) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := workbookHeaders
	if extended {
		headers = append(append([]string{}, workbookHeaders...), "hazard_exposure_index")
	}

	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}

	for i, c := range countries {
		row := []any{
			c.row.Country,
			cell(c.row.IncomeGroup),
			cell(c.row.InsurancePenetration),
			cell(c.row.Reserves),
			cell(c.row.GDPToday),
			cell(c.row.GovernmentDebt),
			cell(c.row.IndustryShareGDP),
			cell(c.row.SupplyChainResilience),
			cell(c.row.RiskQualityIndex),
			cell(c.row.CompetitivenessIndex),
		}
		if extended {
			row = append(row, cell(c.row.HazardExposureIndex))
		}
		addr := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// cell renders a missing indicator as an empty spreadsheet cell.
func cell(v float64) any {
	if domain.Missing(v) {
		return ""
	}
	return v
}

// writeHazardFixtures synthesizes an exposure entity and a hazard event set
// whose damage calculation reproduces the damages embedded in the results
// fixture, so calibrate runs against consistent inputs.
func writeHazardFixtures(outDir, entityRef, hazardRef string, c mockCountry, rng *rand.Rand) (domain.EventDamageSet, error) {
	curve := domain.GenerateVulnerabilityCurve(domain.PerilTC, domain.DefaultTCCurveParams())
	entity := domain.Entity{
		ReferenceYear: 2025,
		Values:        []float64{0.6 * gdpOrDefault(c), 0.4 * gdpOrDefault(c)},
		Curve:         curve,
	}

	intensities := make([][]float64, c.eventCount)
	damages := make(domain.EventDamageSet, c.eventCount)
	for i := range intensities {
		// Skewed toward weak events, occasional strong ones.
		base := 120 * rng.Float64() * rng.Float64()
		intensities[i] = []float64{base, base * 0.8}
		var total float64
		for j, v := range intensities[i] {
			total += entity.Values[j] * curve.Damage(v)
		}
		damages[i] = total * c.maxSeverity
	}

	if err := writeJSON(filepath.Join(outDir, entityRef), entity); err != nil {
		return nil, err
	}
	hazard := map[string]any{"peril": domain.PerilTC, "intensities": intensities}
	if err := writeJSON(filepath.Join(outDir, hazardRef), hazard); err != nil {
		return nil, err
	}
	return damages, nil
}

func gdpOrDefault(c mockCountry) float64 {
	if domain.Missing(c.row.GDPToday) {
		return 20
	}
	return c.row.GDPToday
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
