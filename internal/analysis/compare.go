// Package analysis computes Young-vs-Old summary statistics for a gene's
// sample measurements, supplementing the boxplot with numeric evidence.
package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"geneexplorer/domain/expression"
)

// GroupSummary holds the descriptive statistics of one donor cohort.
type GroupSummary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Comparison is the Young-vs-Old contrast for a single gene. PValue carries
// the Welch t-test result; TestValid is false when either cohort is too
// small or degenerate for the test and PValue must be ignored.
type Comparison struct {
	Young      GroupSummary `json:"young"`
	Old        GroupSummary `json:"old"`
	TStatistic float64      `json:"t_statistic"`
	PValue     float64      `json:"p_value"`
	TestValid  bool         `json:"test_valid"`
}

// CompareAgeGroups summarizes both cohorts and, when both carry at least two
// samples with nonzero variance, runs Welch's t-test on the difference in
// means.
func CompareAgeGroups(measurements []expression.SampleMeasurement) Comparison {
	young := valuesFor(measurements, expression.AgeGroupYoung)
	old := valuesFor(measurements, expression.AgeGroupOld)

	comparison := Comparison{
		Young: summarize(young),
		Old:   summarize(old),
	}

	t, df, ok := welch(young, old)
	if !ok {
		return comparison
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	comparison.TStatistic = t
	comparison.PValue = 2 * dist.CDF(-math.Abs(t))
	comparison.TestValid = true
	return comparison
}

func valuesFor(measurements []expression.SampleMeasurement, group expression.AgeGroup) []float64 {
	var values []float64
	for _, m := range measurements {
		if m.AgeGroup == group {
			values = append(values, m.Value)
		}
	}
	return values
}

func summarize(values []float64) GroupSummary {
	if len(values) == 0 {
		return GroupSummary{}
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)

	summary := GroupSummary{
		N:      len(values),
		Mean:   mean,
		Median: median,
	}

	// The sample statistics return NaN for cohorts below their minimum
	// size, and NaN is not representable in JSON. Those fields stay zero.
	if len(values) >= 2 {
		summary.StdDev, _ = stats.StandardDeviationSample(values)
	}
	if len(values) >= 4 {
		summary.Q25, _ = stats.Percentile(values, 25)
		summary.Q75, _ = stats.Percentile(values, 75)
	}
	return summary
}

// welch computes the Welch t-statistic and Satterthwaite degrees of freedom.
func welch(a, b []float64) (t, df float64, ok bool) {
	if len(a) < 2 || len(b) < 2 {
		return 0, 0, false
	}

	meanA, _ := stats.Mean(a)
	meanB, _ := stats.Mean(b)
	varA, _ := stats.SampleVariance(a)
	varB, _ := stats.SampleVariance(b)

	na, nb := float64(len(a)), float64(len(b))
	se2 := varA/na + varB/nb
	if se2 == 0 {
		return 0, 0, false
	}

	t = (meanA - meanB) / math.Sqrt(se2)
	df = se2 * se2 / ((varA*varA)/(na*na*(na-1)) + (varB*varB)/(nb*nb*(nb-1)))
	if math.IsNaN(t) || math.IsNaN(df) || df <= 0 {
		return 0, 0, false
	}
	return t, df, true
}
