package plotly

import (
	"fmt"
	"math"

	"geneexplorer/domain/expression"
)

const hoverTemplate = "<b>%{customdata[0]}</b><br>" +
	"Log2 FC: %{x:.3f}<br>" +
	"p-value: %{text}<br>" +
	"<extra></extra>"

// seriesStyle fixes the color scheme of the three regulation series.
var seriesStyle = map[expression.Regulation]Marker{
	expression.RegulationNotSig: {Color: "gray", Size: 6, Opacity: 0.6},
	expression.RegulationUp:     {Color: "red", Size: 8, Opacity: 0.8},
	expression.RegulationDown:   {Color: "blue", Size: 8, Opacity: 0.8},
}

// BuildVolcanoFigure turns the derived table into a volcano plot document:
// one scatter series per regulation label plus dashed guide lines at
// p = 0.05 and |log2 fold change| = 1.
func BuildVolcanoFigure(rows []expression.DifferentialExpressionRow) *Figure {
	fig := &Figure{}

	order := []expression.Regulation{
		expression.RegulationNotSig,
		expression.RegulationUp,
		expression.RegulationDown,
	}
	for _, regulation := range order {
		fig.Data = append(fig.Data, volcanoTrace(rows, regulation))
	}

	xMax := symmetricRange(rows)
	yMax := 0.0
	for _, r := range rows {
		if r.NegLog10P > yMax {
			yMax = r.NegLog10P
		}
	}

	pThreshold := -math.Log10(expression.SignificanceThreshold)
	dashed := &Line{Color: "darkgray", Width: 1, Dash: "dash"}

	fig.Layout = Layout{
		Title: &Title{Text: "Volcano Plot of Protein Activity"},
		XAxis: &Axis{
			Title:         &Title{Text: "Log2 Fold Change"},
			GridColor:     "lightgray",
			ZeroLine:      true,
			ZeroLineColor: "black",
			ZeroLineWidth: 1,
			Range:         &[2]float64{-xMax, xMax},
		},
		YAxis: &Axis{
			Title:     &Title{Text: "-log10(adjusted P-value)"},
			GridColor: "lightgray",
		},
		PlotBGColor: "white",
		HoverMode:   "closest",
		Margin:      &Margin{L: 50, R: 50, B: 80, T: 100, Pad: 4},
		Legend: &Legend{
			Orientation: "h",
			YAnchor:     "bottom",
			Y:           1.02,
			XAnchor:     "center",
			X:           0.5,
		},
		Shapes: []Shape{
			{Type: "line", X0: -xMax, X1: xMax, Y0: pThreshold, Y1: pThreshold, Line: dashed},
			{Type: "line", X0: 1, X1: 1, Y0: 0, Y1: yMax, Line: dashed},
			{Type: "line", X0: -1, X1: -1, Y0: 0, Y1: yMax, Line: dashed},
		},
		Annotations: []Annotation{
			{X: 0, Y: pThreshold, Text: "p = 0.05", ShowArrow: false, YShift: 10, Font: &Font{Size: 10}},
		},
	}

	return fig
}

// volcanoTrace builds one regulation series. The series is present even when
// empty so clients always see the same trace set.
func volcanoTrace(rows []expression.DifferentialExpressionRow, regulation expression.Regulation) Trace {
	x := []float64{}
	y := []float64{}
	text := []string{}
	customData := [][]string{}
	for _, r := range rows {
		if r.Regulation != regulation {
			continue
		}
		x = append(x, r.LogFoldChange)
		y = append(y, r.NegLog10P)
		text = append(text, fmt.Sprintf("%.2e", r.AdjustedPValue))
		// Each gene symbol is wrapped in an array to match the frontend's
		// customdata indexing.
		customData = append(customData, []string{r.GeneSymbol})
	}

	marker := seriesStyle[regulation]
	return Trace{
		Type:          "scatter",
		X:             x,
		Y:             y,
		Mode:          "markers",
		Name:          string(regulation),
		Marker:        &marker,
		HoverTemplate: hoverTemplate,
		Text:          text,
		CustomData:    customData,
	}
}

// symmetricRange computes a centered x-axis range with 10% padding, rounded
// to one decimal. Defaults to 5 when no usable range exists.
func symmetricRange(rows []expression.DifferentialExpressionRow) float64 {
	xMax := 0.0
	for _, r := range rows {
		if abs := math.Abs(r.LogFoldChange); abs > xMax {
			xMax = abs
		}
	}
	xMax = math.Round(xMax*1.1*10) / 10
	if xMax == 0 || math.IsNaN(xMax) {
		xMax = 5
	}
	return xMax
}
