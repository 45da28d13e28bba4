package plotly

import (
	"fmt"

	"geneexplorer/domain/expression"
)

var boxColors = map[expression.AgeGroup]struct{ box, points string }{
	expression.AgeGroupYoung: {box: "royalblue", points: "navy"},
	expression.AgeGroupOld:   {box: "firebrick", points: "darkred"},
}

// BuildBoxplotFigure compares Young vs Old measurements for one gene: a box
// trace with mean line per cohort, overlaid with the individual sample
// points. Cohorts with no surviving measurements contribute no traces.
func BuildBoxplotFigure(geneSymbol string, measurements []expression.SampleMeasurement) *Figure {
	fig := &Figure{}
	hidden := false

	for _, group := range []expression.AgeGroup{expression.AgeGroupYoung, expression.AgeGroupOld} {
		values := []float64{}
		for _, m := range measurements {
			if m.AgeGroup == group {
				values = append(values, m.Value)
			}
		}
		if len(values) == 0 {
			continue
		}

		colors := boxColors[group]
		fig.Data = append(fig.Data, Trace{
			Type:    "box",
			Y:       values,
			Name:    string(group),
			BoxMean: true,
			Marker:  &Marker{Color: colors.box},
		})

		labels := make([]string, len(values))
		for i := range labels {
			labels[i] = string(group)
		}
		fig.Data = append(fig.Data, Trace{
			Type:       "scatter",
			X:          labels,
			Y:          values,
			Mode:       "markers",
			Name:       fmt.Sprintf("%s samples", group),
			Marker:     &Marker{Color: colors.points, Size: 8, Opacity: 0.6},
			ShowLegend: &hidden,
		})
	}

	fig.Layout = Layout{
		Title:       &Title{Text: fmt.Sprintf("Protein levels of %s in Young vs Old samples", geneSymbol)},
		YAxis:       &Axis{Title: &Title{Text: "Protein level"}},
		XAxis:       &Axis{Title: &Title{Text: "Age group"}},
		BoxMode:     "group",
		PlotBGColor: "white",
		Margin:      &Margin{L: 50, R: 50, B: 80, T: 100, Pad: 4},
	}

	return fig
}
