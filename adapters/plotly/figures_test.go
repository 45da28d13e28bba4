package plotly

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geneexplorer/domain/expression"
)

func sampleTable() []expression.DifferentialExpressionRow {
	return []expression.DifferentialExpressionRow{
		{GeneSymbol: "GENE1", LogFoldChange: 1.5, AdjustedPValue: 0.01, NegLog10P: 2, IsSignificant: true, Regulation: expression.RegulationUp},
		{GeneSymbol: "GENE2", LogFoldChange: -2.0, AdjustedPValue: 0.001, NegLog10P: 3, IsSignificant: true, Regulation: expression.RegulationDown},
		{GeneSymbol: "GENE3", LogFoldChange: 0.2, AdjustedPValue: 0.2, NegLog10P: 0.7, Regulation: expression.RegulationNotSig},
	}
}

func TestBuildVolcanoFigureSeries(t *testing.T) {
	fig := BuildVolcanoFigure(sampleTable())

	require.Len(t, fig.Data, 3)
	assert.Equal(t, "not significant", fig.Data[0].Name)
	assert.Equal(t, "up-regulated", fig.Data[1].Name)
	assert.Equal(t, "down-regulated", fig.Data[2].Name)

	up := fig.Data[1]
	assert.Equal(t, []float64{1.5}, up.X)
	assert.Equal(t, []float64{2}, up.Y)
	assert.Equal(t, [][]string{{"GENE1"}}, up.CustomData)
	assert.Equal(t, "red", up.Marker.Color)
	assert.Equal(t, []string{"1.00e-02"}, up.Text)
}

func TestBuildVolcanoFigureThresholdLines(t *testing.T) {
	fig := BuildVolcanoFigure(sampleTable())

	require.Len(t, fig.Layout.Shapes, 3)
	pThreshold := -math.Log10(0.05)
	assert.InDelta(t, pThreshold, fig.Layout.Shapes[0].Y0, 1e-9)
	assert.InDelta(t, pThreshold, fig.Layout.Shapes[0].Y1, 1e-9)
	assert.Equal(t, 1.0, fig.Layout.Shapes[1].X0)
	assert.Equal(t, -1.0, fig.Layout.Shapes[2].X0)

	require.Len(t, fig.Layout.Annotations, 1)
	assert.Equal(t, "p = 0.05", fig.Layout.Annotations[0].Text)

	// Max |logFC| is 2.0: 10% padding gives a symmetric ±2.2 range.
	require.NotNil(t, fig.Layout.XAxis.Range)
	assert.InDelta(t, -2.2, fig.Layout.XAxis.Range[0], 1e-9)
	assert.InDelta(t, 2.2, fig.Layout.XAxis.Range[1], 1e-9)
}

func TestBuildVolcanoFigureEmptyTable(t *testing.T) {
	fig := BuildVolcanoFigure(nil)

	// The three series are always present, just empty, and the x-range
	// falls back to the default width.
	require.Len(t, fig.Data, 3)
	assert.InDelta(t, 5, fig.Layout.XAxis.Range[1], 1e-9)
}

func TestBuildVolcanoFigureMarshalsToPlotlySchema(t *testing.T) {
	fig := BuildVolcanoFigure(sampleTable())
	raw, err := json.Marshal(fig)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc, "data")
	assert.Contains(t, doc, "layout")

	var layout map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(doc["layout"], &layout))
	assert.Contains(t, layout, "xaxis")
	assert.Contains(t, layout, "shapes")
	assert.Contains(t, layout, "plot_bgcolor")
}

func boxMeasurements() []expression.SampleMeasurement {
	return []expression.SampleMeasurement{
		{GeneSymbol: "GENE2", SampleID: "YD12", AgeGroup: expression.AgeGroupYoung, Value: 0.8},
		{GeneSymbol: "GENE2", SampleID: "YD13", AgeGroup: expression.AgeGroupYoung, Value: 1.2},
		{GeneSymbol: "GENE2", SampleID: "OD12", AgeGroup: expression.AgeGroupOld, Value: 1.8},
		{GeneSymbol: "GENE2", SampleID: "OD13", AgeGroup: expression.AgeGroupOld, Value: 2.2},
	}
}

func TestBuildBoxplotFigure(t *testing.T) {
	fig := BuildBoxplotFigure("GENE2", boxMeasurements())

	// Box plus point overlay per cohort.
	require.Len(t, fig.Data, 4)
	assert.Equal(t, "box", fig.Data[0].Type)
	assert.Equal(t, "Young", fig.Data[0].Name)
	assert.True(t, fig.Data[0].BoxMean)
	assert.Equal(t, []float64{0.8, 1.2}, fig.Data[0].Y)

	overlay := fig.Data[1]
	assert.Equal(t, "scatter", overlay.Type)
	assert.Equal(t, []string{"Young", "Young"}, overlay.X)
	require.NotNil(t, overlay.ShowLegend)
	assert.False(t, *overlay.ShowLegend)

	assert.Equal(t, "Old", fig.Data[2].Name)
	assert.Contains(t, fig.Layout.Title.Text, "GENE2")
}

func TestBuildBoxplotFigureSingleCohort(t *testing.T) {
	young := boxMeasurements()[:2]
	fig := BuildBoxplotFigure("GENE1", young)

	require.Len(t, fig.Data, 2)
	assert.Equal(t, "Young", fig.Data[0].Name)
}
