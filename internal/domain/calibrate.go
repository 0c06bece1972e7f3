package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// PerilTC is the peril tag for tropical cyclone wind.
const PerilTC = "TC"

// Entity is an exposure: asset values and the vulnerability curve that maps
// hazard intensity to damage. Entities live in external files; EntityLoader
// resolves references into this form.
type Entity struct {
	ReferenceYear int                `json:"reference_year"`
	Values        []float64          `json:"values"`
	Curve         VulnerabilityCurve `json:"curve"`
}

// VulnerabilityCurve is a piecewise damage function sampled at fixed
// intensity breakpoints. MDD is the mean damage degree in [0,1] at each
// breakpoint.
type VulnerabilityCurve struct {
	Peril     string    `json:"peril"`
	Shape     string    `json:"shape"`
	Intensity []float64 `json:"intensity"`
	MDD       []float64 `json:"mdd"`
}

// CurveParams are the shape parameters of a generated curve: the intensity
// below which no damage occurs, the midpoint intensity producing half
// damage, and the sampling grid.
type CurveParams struct {
	Thresh       float64
	Half         float64
	MaxIntensity float64
	Step         float64
	Shape        string
}

// DefaultTCCurveParams returns the standard tropical cyclone wind parameters:
// Emanuel-type cubic saturation over a 0-120 m/s grid with 5 m/s steps.
func DefaultTCCurveParams() CurveParams {
	return CurveParams{
		Thresh:       20,
		Half:         55,
		MaxIntensity: 120,
		Step:         5,
		Shape:        "emanuel",
	}
}

// GenerateVulnerabilityCurve samples an S-shaped damage function at the
// parameter grid. Damage is zero up to Thresh, half at Half, and saturates
// toward 1: mdd = x^3 / (1 + x^3) with x = (v - Thresh) / (Half - Thresh).
func GenerateVulnerabilityCurve(peril string, p CurveParams) VulnerabilityCurve {
	n := int(p.MaxIntensity/p.Step) + 1
	curve := VulnerabilityCurve{
		Peril:     peril,
		Shape:     p.Shape,
		Intensity: make([]float64, n),
		MDD:       make([]float64, n),
	}
	for i := 0; i < n; i++ {
		v := float64(i) * p.Step
		curve.Intensity[i] = v
		x := (v - p.Thresh) / (p.Half - p.Thresh)
		if x > 0 {
			curve.MDD[i] = math.Pow(x, 3) / (1 + math.Pow(x, 3))
		}
	}
	return curve
}

// Damage interpolates the mean damage degree at an intensity, clamping
// outside the sampled grid.
func (c VulnerabilityCurve) Damage(intensity float64) float64 {
	if len(c.Intensity) == 0 {
		return 0
	}
	if intensity <= c.Intensity[0] {
		return c.MDD[0]
	}
	last := len(c.Intensity) - 1
	if intensity >= c.Intensity[last] {
		return c.MDD[last]
	}
	for i := 1; i <= last; i++ {
		if intensity <= c.Intensity[i] {
			span := c.Intensity[i] - c.Intensity[i-1]
			frac := (intensity - c.Intensity[i-1]) / span
			return c.MDD[i-1] + frac*(c.MDD[i]-c.MDD[i-1])
		}
	}
	return c.MDD[last]
}

// CalibrateOptions selects the (country, hazard) pair and supplies the
// collaborators for one calibration pass.
type CalibrateOptions struct {
	CountryIndex int
	HazardIndex  int

	// GrowthRate is the annual exposure growth applied from the entity's
	// reference year to the current year.
	GrowthRate float64

	Params     CurveParams
	Entities   EntityLoader
	Calculator DamageCalculator

	// Plotter is optional. Aggregate selects the multi-country figure.
	Plotter   Plotter
	Aggregate bool

	Logger *slog.Logger
}

// Calibrate substitutes a freshly generated vulnerability curve into the
// selected hazard's exposure, re-runs the damage calculation, and returns a
// new result list with that pair's damage set replaced. Results for other
// pairs are carried over unchanged.
//
// Unrecognized perils pass through without recalculation, matching the
// manual-tuning workflow where only tropical cyclone curves are generated.
func Calibrate(ctx context.Context, results []CountryRiskResult, opts CalibrateOptions) ([]CountryRiskResult, error) {
	ci, hi := opts.CountryIndex, opts.HazardIndex
	if ci < 0 || ci >= len(results) {
		return results, fmt.Errorf("country index %d: %w", ci, ErrIndexOutOfRange)
	}
	if hi < 0 || hi >= len(results[ci].Hazards) {
		return results, fmt.Errorf("hazard index %d: %w", hi, ErrIndexOutOfRange)
	}
	if opts.Entities == nil || opts.Calculator == nil {
		return results, errors.New("calibrate: entity loader and damage calculator are required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	target := results[ci].Hazards[hi]
	if target.Peril != PerilTC {
		logger.Info("peril not recognized, damage set left unchanged",
			"country", results[ci].Country, "peril", target.Peril)
		return results, nil
	}

	entity, err := opts.Entities.LoadEntity(ctx, target.EntityRef)
	if err != nil {
		return results, fmt.Errorf("load entity %q: %w", target.EntityRef, err)
	}

	entity.Curve = GenerateVulnerabilityCurve(target.Peril, opts.Params)
	entity = growExposure(entity, opts.GrowthRate)

	damages, err := opts.Calculator.ComputeDamages(ctx, entity, target.HazardRef)
	if err != nil {
		return results, fmt.Errorf("compute damages for %s/%s: %w", results[ci].Country, target.Peril, err)
	}

	out := make([]CountryRiskResult, len(results))
	for i, r := range results {
		out[i] = r
	}
	out[ci] = results[ci].Clone()
	out[ci].Hazards[hi].Damages = damages

	plotCalibration(ctx, out, ci, opts, logger)
	return out, nil
}

// growExposure scales entity values by the annual growth rate compounded
// from the entity reference year to the current year.
func growExposure(entity Entity, growthRate float64) Entity {
	if growthRate == 0 || entity.ReferenceYear == 0 {
		return entity
	}
	years := clock.Now().Year() - entity.ReferenceYear
	if years <= 0 {
		return entity
	}
	scale := math.Pow(1+growthRate, float64(years))
	scaled := make([]float64, len(entity.Values))
	for i, v := range entity.Values {
		scaled[i] = v * scale
	}
	entity.Values = scaled
	return entity
}

// plotCalibration renders the optional figure. Errors are logged only; a
// failed plot never fails the calibration run.
func plotCalibration(ctx context.Context, results []CountryRiskResult, ci int, opts CalibrateOptions, logger *slog.Logger) {
	if opts.Plotter == nil {
		return
	}
	var err error
	if opts.Aggregate {
		err = opts.Plotter.PlotAggregate(ctx, results)
	} else {
		err = opts.Plotter.PlotCountry(ctx, results[ci])
	}
	if err != nil {
		logger.Warn("plot failed", "country", results[ci].Country, "error", err)
	}
}
