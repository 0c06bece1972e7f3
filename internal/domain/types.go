package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// EventDamageSet holds per-event damage magnitudes produced by a damage
// calculation run. The length is fixed by the hazard event set; adjustment
// rescales individual magnitudes but never reorders or resizes the set.
type EventDamageSet []float64

// HazardResult pairs a peril with its computed event damage set. EntityRef and
// HazardRef point at externally managed exposure and hazard event set files.
type HazardResult struct {
	Peril     string         `json:"peril"` // e.g. "TC"
	EntityRef string         `json:"entity_ref,omitempty"`
	HazardRef string         `json:"hazard_ref,omitempty"`
	Damages   EventDamageSet `json:"damages"`
}

// CountryRiskResult aggregates the simulated hazard results for one country.
type CountryRiskResult struct {
	Country      string         `json:"country"`
	Hazards      []HazardResult `json:"hazards"`
	DamageFactor float64        `json:"damage_factor,omitempty"`
	AdjustedAt   time.Time      `json:"adjusted_at,omitzero"`

	RawPayload []byte `json:"-"`
}

// Clone returns a deep copy so adjustment can return a new value without
// touching the caller's damage sets.
func (r CountryRiskResult) Clone() CountryRiskResult {
	out := r
	out.Hazards = make([]HazardResult, len(r.Hazards))
	for i, h := range r.Hazards {
		out.Hazards[i] = h
		out.Hazards[i].Damages = append(EventDamageSet{}, h.Damages...)
	}
	return out
}

// RawResult represents an unprocessed message from the source topic.
type RawResult struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ParseRawResult deserializes a RawResult's value into a CountryRiskResult.
// It expects the JSON produced by the simulation export service.
func ParseRawResult(raw RawResult) (CountryRiskResult, error) {
	var result CountryRiskResult
	if err := json.Unmarshal(raw.Value, &result); err != nil {
		return CountryRiskResult{}, fmt.Errorf("parse raw result: %w: %w", ErrBadPayload, err)
	}
	if result.Country == "" {
		return CountryRiskResult{}, fmt.Errorf("parse raw result: %w: missing country name", ErrBadPayload)
	}
	result.RawPayload = raw.Value
	return result, nil
}

// IndicatorRow holds the socioeconomic indicators for one country. Missing
// cells are NaN; the factor computation reports them as missing data.
type IndicatorRow struct {
	Country               string
	IncomeGroup           float64 // World Bank income group, 1-4
	InsurancePenetration  float64 // non-life premium volume, % of GDP
	Reserves              float64 // total reserves, same currency as GDP
	GDPToday              float64 // current GDP
	GovernmentDebt        float64 // central government debt, fraction of GDP
	IndustryShareGDP      float64 // industry value added, fraction of GDP
	SupplyChainResilience float64 // supply chain resilience score, 0-100
	RiskQualityIndex      float64 // natural hazard risk quality, 0-100
	CompetitivenessIndex  float64 // global competitiveness index, 1-7
	HazardExposureIndex   float64 // economic exposure to natural hazards, 0-10 (extended table only)
}

// IndicatorTable is a read-only lookup of indicator rows keyed by normalized
// country name. Extended reports whether the source carried the
// hazard-exposure column.
type IndicatorTable struct {
	rows     map[string]IndicatorRow
	Extended bool
	Source   string
}

// NewIndicatorTable builds a table from rows. Later duplicates of the same
// normalized country name win.
func NewIndicatorTable(rows []IndicatorRow, extended bool, source string) *IndicatorTable {
	t := &IndicatorTable{
		rows:     make(map[string]IndicatorRow, len(rows)),
		Extended: extended,
		Source:   source,
	}
	for _, row := range rows {
		t.rows[NormalizeCountry(row.Country)] = row
	}
	return t
}

// Lookup returns the indicator row for a country, or ErrCountryNotFound.
func (t *IndicatorTable) Lookup(country string) (IndicatorRow, error) {
	row, ok := t.rows[NormalizeCountry(country)]
	if !ok {
		return IndicatorRow{}, fmt.Errorf("%q: %w", country, ErrCountryNotFound)
	}
	return row, nil
}

// Len returns the number of countries in the table.
func (t *IndicatorTable) Len() int { return len(t.rows) }

// NormalizeCountry canonicalizes a free-text country name for lookup:
// trimmed, upper-cased, inner whitespace collapsed.
func NormalizeCountry(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// Missing reports whether an indicator cell carries no value.
func Missing(v float64) bool { return math.IsNaN(v) }
