package domain

import (
	"context"
	"fmt"
)

// AdjustOptions configures economic loss adjustment. The zero value uses the
// default damage weight and no GDP fallback.
type AdjustOptions struct {
	// Weight maps damage/GDP ratios to multiplier weights. Nil selects
	// DefaultDamageWeight.
	Weight DamageWeightFunc

	// GDP optionally supplies current GDP for countries whose table row has
	// a missing gdp_today cell.
	GDP GDPProvider
}

func (o AdjustOptions) weight() DamageWeightFunc {
	if o.Weight == nil {
		return DefaultDamageWeight
	}
	return o.Weight
}

// AdjustCountry rescales every simulated event damage of one country into
// economic loss. It returns a new result value; the input is not modified.
//
// Each magnitude d becomes d * (1 + weight(d/GDP) * factor) where factor is
// the country damage factor derived from the indicator table. Empty damage
// sets pass through as empty.
func AdjustCountry(ctx context.Context, result CountryRiskResult, table *IndicatorTable, opts AdjustOptions) (CountryRiskResult, error) {
	row, err := table.Lookup(result.Country)
	if err != nil {
		return CountryRiskResult{}, err
	}

	gdp := row.GDPToday
	if Missing(gdp) && opts.GDP != nil {
		gdp, err = opts.GDP.CurrentGDP(ctx, result.Country)
		if err != nil {
			return CountryRiskResult{}, fmt.Errorf("gdp fallback for %s: %w: %w", result.Country, ErrGDPUnavailable, err)
		}
		row.GDPToday = gdp
	}

	breakdown, err := CountryDamageFactor(row, table.Extended)
	if err != nil {
		return CountryRiskResult{}, err
	}

	weight := opts.weight()
	adjusted := result.Clone()
	for hi := range adjusted.Hazards {
		damages := adjusted.Hazards[hi].Damages
		if len(damages) == 0 {
			adjusted.Hazards[hi].Damages = EventDamageSet{}
			continue
		}
		for ei, d := range damages {
			multiplier := 1 + weight(d/gdp)*breakdown.Factor
			damages[ei] = d * multiplier
		}
	}

	adjusted.DamageFactor = breakdown.Factor
	adjusted.AdjustedAt = clock.Now()
	return adjusted, nil
}

// CountryOutcome is the per-country result of a batch adjustment. Exactly one
// of Result and Err is meaningful.
type CountryOutcome struct {
	Country string
	Result  CountryRiskResult
	Err     error
}

// AdjustBatch adjusts each country independently and collects an ordered
// outcome per input. A failing country never discards the results of its
// siblings; callers decide how to treat partial success.
func AdjustBatch(ctx context.Context, results []CountryRiskResult, table *IndicatorTable, opts AdjustOptions) []CountryOutcome {
	outcomes := make([]CountryOutcome, 0, len(results))
	for _, result := range results {
		adjusted, err := AdjustCountry(ctx, result, table, opts)
		outcomes = append(outcomes, CountryOutcome{
			Country: result.Country,
			Result:  adjusted,
			Err:     err,
		})
	}
	return outcomes
}
