package domain

import "context"

// EntityLoader resolves an exposure entity reference to its contents.
type EntityLoader interface {
	LoadEntity(ctx context.Context, ref string) (Entity, error)
}

// DamageCalculator runs the external damage calculation: applying an entity's
// vulnerability curve to a hazard event set, yielding one damage magnitude
// per simulated event.
type DamageCalculator interface {
	ComputeDamages(ctx context.Context, entity Entity, hazardRef string) (EventDamageSet, error)
}

// Plotter renders calibration output. Plot failures are reported to the
// caller's logger but never fail a calibration run.
type Plotter interface {
	// PlotCountry renders a single-country damage overview.
	PlotCountry(ctx context.Context, result CountryRiskResult) error

	// PlotAggregate renders all countries in one figure.
	PlotAggregate(ctx context.Context, results []CountryRiskResult) error
}

// GDPProvider supplies a current GDP figure for countries whose indicator
// row has no gdp_today value.
type GDPProvider interface {
	CurrentGDP(ctx context.Context, country string) (float64, error)
}

// DamageWeightFunc maps a damage-to-GDP ratio to a weight in [0,1]
// controlling how strongly the country damage factor scales an event's loss.
// Implementations must be monotonically non-decreasing in the ratio.
type DamageWeightFunc func(ratio float64) float64

// DefaultDamageWeight saturates linearly: events below a third of GDP weigh
// in proportionally, anything larger weighs in fully.
func DefaultDamageWeight(ratio float64) float64 {
	if ratio <= 0 {
		return 0
	}
	if w := 3 * ratio; w < 1 {
		return w
	}
	return 1
}
