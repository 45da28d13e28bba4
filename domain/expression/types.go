package expression

import "strings"

// Regulation classifies a gene's direction of change between conditions.
type Regulation string

const (
	RegulationUp     Regulation = "up-regulated"
	RegulationDown   Regulation = "down-regulated"
	RegulationNotSig Regulation = "not significant"
)

// AgeGroup identifies the donor cohort a sample column belongs to.
type AgeGroup string

const (
	AgeGroupYoung AgeGroup = "Young"
	AgeGroupOld   AgeGroup = "Old"
)

// SignificanceThreshold is the adjusted p-value cutoff for calling a gene
// significant.
const SignificanceThreshold = 0.05

// DifferentialExpressionRow is one cleaned row of the limma results sheet,
// augmented with the derived volcano-plot fields.
type DifferentialExpressionRow struct {
	GeneSymbol     string     `json:"gene_symbol"`
	LogFoldChange  float64    `json:"log_fold_change"`
	AdjustedPValue float64    `json:"adjusted_p_value"`
	NegLog10P      float64    `json:"neg_log10_p"`
	IsSignificant  bool       `json:"is_significant"`
	Regulation     Regulation `json:"regulation"`
}

// SampleMeasurement is one (gene, donor column) value from the values sheet.
type SampleMeasurement struct {
	GeneSymbol string   `json:"gene_symbol"`
	SampleID   string   `json:"sample"`
	AgeGroup   AgeGroup `json:"age_group"`
	Value      float64  `json:"value"`
}

// GeneRecord is the externally visible composite for a single gene: its
// differential-expression row joined with its per-sample measurements.
// A record is only ever constructed with at least one measurement; a gene
// missing from either sheet has no record at all.
type GeneRecord struct {
	Info         DifferentialExpressionRow `json:"gene_info"`
	Measurements []SampleMeasurement       `json:"boxplot_data"`
}

// AgeGroupForSample derives the donor cohort from a column header.
// Headers containing "YD" map to Young, "OD" to Old (case-insensitive
// substring match). The second return is false for columns that belong to
// neither cohort; such columns are skipped, not errors.
func AgeGroupForSample(columnName string) (AgeGroup, bool) {
	upper := strings.ToUpper(columnName)
	if strings.Contains(upper, "YD") {
		return AgeGroupYoung, true
	}
	if strings.Contains(upper, "OD") {
		return AgeGroupOld, true
	}
	return "", false
}
