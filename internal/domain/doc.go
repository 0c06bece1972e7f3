// Package domain models country-level catastrophe risk results and the two
// transforms applied to them: damage function calibration and economic loss
// adjustment.
//
// # Data Source
//
// CountryRiskResult records arrive from the upstream simulation export: one
// message per country, each carrying the simulated event damage sets for that
// country's hazards. The socioeconomic indicator table is a spreadsheet
// maintained by the risk team, one row per country; see the table package for
// the file conventions.
//
// # Indicator Conventions
//
// Missing cells are NaN after loading. Two columns are bucketed into small
// discrete factor sets rather than used directly:
//
//	Income group (World Bank classification, 1-4):
//	  1 → 0.9 | 2 → 0.4 | 3 → 0.5 | 4 → 1.0 | missing → 0.4
//	  Any other raw value is undefined and rejected.
//
//	Insurance penetration (non-life premiums, % of GDP):
//	  ≤5 → 0 | (5,10] → 0.5 | >10 → 1.0 | missing → 0
//	  Boundary values belong to the lower bucket.
//
// # Country Damage Factor
//
// The composite factor combines four sub-terms:
//
//	financial strength   = min(reserves/GDP, 1) + insurance factor
//	                       + income factor - government debt, floored at 0.5
//	                       (the floor caps its reciprocal at 2)
//	BI/supply chain risk = industry share of GDP + (1 - resilience/100)
//	hazard exposure      = 1 - exposure index/10 (extended table only, else 0)
//	disaster resilience  = risk quality/100 + (competitiveness - 1)/6
//
//	factor = 1/financial strength + BI/supply chain risk
//	         + hazard exposure - disaster resilience, floored at 0
//
// A NaN in any sub-term aborts that country with a MissingIndicatorError
// naming the columns involved.
//
// # Loss Adjustment
//
// Every event damage d is rescaled by 1 + weight(d/GDP) * factor, where the
// weight function is monotonic in the damage-to-GDP ratio. A factor of 0
// therefore leaves every damage unchanged. Damage sets are never reordered or
// resized, only rescaled.
//
// # Calibration
//
// Calibration regenerates a tropical cyclone vulnerability curve from shape
// parameters (damage threshold, half-damage midpoint, sampling grid) using
// the Emanuel cubic saturation form
//
//	mdd = x³ / (1 + x³),  x = (v - thresh) / (half - thresh)
//
// substitutes it into the exposure entity, and re-runs the external damage
// calculation. The new damage set always has the hazard set's event count.
package domain
