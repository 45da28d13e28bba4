package expression

import "math"

// RawRow is a primary-sheet row after numeric coercion but before any
// derived fields are computed.
type RawRow struct {
	GeneSymbol     string
	LogFoldChange  float64
	AdjustedPValue float64
}

// zeroSubstitute returns the p-value to use in place of a literal zero so
// the log transform stays finite: one tenth of the smallest positive value
// in the column, or 1e-10 when the column has no positive value at all.
func zeroSubstitute(rows []RawRow) float64 {
	minPositive := math.Inf(1)
	for _, r := range rows {
		if r.AdjustedPValue > 0 && r.AdjustedPValue < minPositive {
			minPositive = r.AdjustedPValue
		}
	}
	if math.IsInf(minPositive, 1) {
		return 1e-10
	}
	return minPositive / 10
}

// classify labels a row's regulation direction. A significant row with a
// fold change of exactly zero stays not significant.
func classify(logFC float64, significant bool) Regulation {
	switch {
	case significant && logFC > 0:
		return RegulationUp
	case significant && logFC < 0:
		return RegulationDown
	default:
		return RegulationNotSig
	}
}

// Derive computes the volcano-plot fields for every cleaned row: the
// zero-substituted adjusted p-value, -log10(p), significance and regulation.
// Rows whose derived values are not finite are dropped. Output order matches
// input order, and the result is deterministic for identical input.
func Derive(rows []RawRow) []DifferentialExpressionRow {
	substitute := zeroSubstitute(rows)

	derived := make([]DifferentialExpressionRow, 0, len(rows))
	for _, r := range rows {
		pValue := r.AdjustedPValue
		if pValue == 0 {
			pValue = substitute
		}

		negLog10 := -math.Log10(pValue)
		if math.IsNaN(negLog10) || math.IsInf(negLog10, 0) ||
			math.IsNaN(r.LogFoldChange) || math.IsInf(r.LogFoldChange, 0) {
			continue
		}

		significant := pValue < SignificanceThreshold
		derived = append(derived, DifferentialExpressionRow{
			GeneSymbol:     r.GeneSymbol,
			LogFoldChange:  r.LogFoldChange,
			AdjustedPValue: pValue,
			NegLog10P:      negLog10,
			IsSignificant:  significant,
			Regulation:     classify(r.LogFoldChange, significant),
		})
	}
	return derived
}
