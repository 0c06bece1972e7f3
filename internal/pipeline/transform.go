package pipeline

import (
	"context"
	"log/slog"

	"github.com/bielim/country-risk-etl/internal/domain"
)

// LossAdjuster implements Transformer: it parses a raw risk result message
// and rescales its event damages into economic loss against the indicator
// table.
type LossAdjuster struct {
	table  *domain.IndicatorTable
	opts   domain.AdjustOptions
	logger *slog.Logger
}

// NewLossAdjuster creates a LossAdjuster. Pass a nil GDP provider in opts to
// disable the World Bank fallback.
func NewLossAdjuster(table *domain.IndicatorTable, opts domain.AdjustOptions, logger *slog.Logger) *LossAdjuster {
	return &LossAdjuster{
		table:  table,
		opts:   opts,
		logger: logger,
	}
}

func (a *LossAdjuster) Transform(ctx context.Context, raw domain.RawResult) (domain.CountryRiskResult, error) {
	result, err := domain.ParseRawResult(raw)
	if err != nil {
		return domain.CountryRiskResult{}, err
	}

	adjusted, err := domain.AdjustCountry(ctx, result, a.table, a.opts)
	if err != nil {
		return domain.CountryRiskResult{}, err
	}

	a.logger.Debug("country adjusted",
		"country", adjusted.Country,
		"damage_factor", adjusted.DamageFactor,
		"hazards", len(adjusted.Hazards),
	)
	return adjusted, nil
}
