package domain

import (
	"fmt"
	"math"
)

// financialStrengthFloor caps the reciprocal term at 2; a country can at most
// double the financial-strength contribution to its damage factor.
const financialStrengthFloor = 0.5

// IncomeGroupFactor buckets a raw World Bank income group into a factor.
// Missing values fall into the low-income bucket. Raw values outside {1,2,3,4}
// are undefined and rejected.
func IncomeGroupFactor(raw float64) (float64, error) {
	if Missing(raw) {
		return 0.4, nil
	}
	switch raw {
	case 1:
		return 0.9, nil
	case 2:
		return 0.4, nil
	case 3:
		return 0.5, nil
	case 4:
		return 1.0, nil
	default:
		return 0, fmt.Errorf("undefined income group %v", raw)
	}
}

// InsurancePenetrationFactor buckets a raw non-life insurance penetration
// percentage. Boundaries belong to the lower bucket; missing counts as
// uninsured.
func InsurancePenetrationFactor(raw float64) float64 {
	switch {
	case Missing(raw):
		return 0
	case raw <= 5:
		return 0
	case raw <= 10:
		return 0.5
	default:
		return 1.0
	}
}

// FactorBreakdown carries the four sub-terms alongside the combined damage
// factor, mainly for diagnostics and plotting.
type FactorBreakdown struct {
	FinancialStrength     float64 `json:"financial_strength"`
	BISupplyChainRisk     float64 `json:"bi_supply_chain_risk"`
	NaturalHazardExposure float64 `json:"natural_hazard_exposure"`
	DisasterResilience    float64 `json:"disaster_resilience"`
	Factor                float64 `json:"factor"`
}

// CountryDamageFactor derives the composite damage factor for one indicator
// row. Extended controls whether the hazard-exposure term is computed or
// fixed at 0. A NaN in any required sub-term yields a MissingIndicatorError
// naming the columns involved.
func CountryDamageFactor(row IndicatorRow, extended bool) (FactorBreakdown, error) {
	incomeFactor, err := IncomeGroupFactor(row.IncomeGroup)
	if err != nil {
		return FactorBreakdown{}, &MissingIndicatorError{Country: row.Country, Columns: []string{"income_group"}}
	}
	insuranceFactor := InsurancePenetrationFactor(row.InsurancePenetration)

	financialStrength := math.Min(row.Reserves/row.GDPToday, 1) +
		insuranceFactor + incomeFactor - row.GovernmentDebt
	if financialStrength < financialStrengthFloor {
		financialStrength = financialStrengthFloor
	}

	biSupplyChainRisk := row.IndustryShareGDP + (1 - row.SupplyChainResilience/100)

	naturalHazardExposure := 0.0
	if extended {
		naturalHazardExposure = 1 - row.HazardExposureIndex/10
	}

	disasterResilience := row.RiskQualityIndex/100 + (row.CompetitivenessIndex-1)/6

	b := FactorBreakdown{
		FinancialStrength:     financialStrength,
		BISupplyChainRisk:     biSupplyChainRisk,
		NaturalHazardExposure: naturalHazardExposure,
		DisasterResilience:    disasterResilience,
	}
	if missing := missingColumns(b, row, extended); len(missing) > 0 {
		return FactorBreakdown{}, &MissingIndicatorError{Country: row.Country, Columns: missing}
	}

	b.Factor = 1/b.FinancialStrength + b.BISupplyChainRisk + b.NaturalHazardExposure - b.DisasterResilience
	if math.IsNaN(b.Factor) {
		// Sub-terms were individually computable but combined to NaN
		// (infinite terms cancelling). Never let that reach the rescaling.
		return FactorBreakdown{}, &MissingIndicatorError{Country: row.Country, Columns: factorColumns(extended)}
	}
	if b.Factor < 0 {
		b.Factor = 0
	}
	return b, nil
}

// factorColumns lists every indicator column feeding the damage factor.
func factorColumns(extended bool) []string {
	columns := []string{
		"reserves", "gdp_today", "government_debt",
		"gdp_industry_share", "supply_chain_resilience",
		"risk_quality_index", "competitiveness_index",
	}
	if extended {
		columns = append(columns, "hazard_exposure_index")
	}
	return columns
}

// missingColumns maps NaN sub-terms back to the indicator columns they
// depend on, so the error names what the table is actually missing. A NaN
// sub-term always contributes columns: when every input cell is present but
// the arithmetic is still indeterminate (0/0 reserves over GDP), all of the
// term's columns are named.
func missingColumns(b FactorBreakdown, row IndicatorRow, extended bool) []string {
	var missing []string
	if math.IsNaN(b.FinancialStrength) {
		missing = appendTermColumns(missing,
			cell{row.Reserves, "reserves"},
			cell{row.GDPToday, "gdp_today"},
			cell{row.GovernmentDebt, "government_debt"},
		)
	}
	if math.IsNaN(b.BISupplyChainRisk) {
		missing = appendTermColumns(missing,
			cell{row.IndustryShareGDP, "gdp_industry_share"},
			cell{row.SupplyChainResilience, "supply_chain_resilience"},
		)
	}
	if extended && math.IsNaN(b.NaturalHazardExposure) {
		missing = appendTermColumns(missing,
			cell{row.HazardExposureIndex, "hazard_exposure_index"},
		)
	}
	if math.IsNaN(b.DisasterResilience) {
		missing = appendTermColumns(missing,
			cell{row.RiskQualityIndex, "risk_quality_index"},
			cell{row.CompetitivenessIndex, "competitiveness_index"},
		)
	}
	return missing
}

type cell struct {
	value  float64
	column string
}

// appendTermColumns appends the NaN cells of one sub-term; with none NaN,
// every cell of the term is appended so the error still says which inputs
// produced the unusable value.
func appendTermColumns(missing []string, cells ...cell) []string {
	before := len(missing)
	for _, c := range cells {
		if Missing(c.value) {
			missing = append(missing, c.column)
		}
	}
	if len(missing) > before {
		return missing
	}
	for _, c := range cells {
		missing = append(missing, c.column)
	}
	return missing
}
