// Package plotly serializes tabular results into Plotly figure documents.
// Only the slice of the figure schema this application emits is modeled;
// the structs marshal to the same JSON a Plotly client consumes directly.
package plotly

// Figure is a complete Plotly document: traces plus layout.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single series. X and Y stay untyped because scatter overlays
// on box plots use categorical x values while volcano traces use numeric.
type Trace struct {
	Type          string     `json:"type"`
	X             any        `json:"x,omitempty"`
	Y             any        `json:"y,omitempty"`
	Mode          string     `json:"mode,omitempty"`
	Name          string     `json:"name,omitempty"`
	Marker        *Marker    `json:"marker,omitempty"`
	HoverTemplate string     `json:"hovertemplate,omitempty"`
	Text          []string   `json:"text,omitempty"`
	CustomData    [][]string `json:"customdata,omitempty"`
	BoxMean       bool       `json:"boxmean,omitempty"`
	ShowLegend    *bool      `json:"showlegend,omitempty"`
}

// Marker styles the points of a trace.
type Marker struct {
	Color   string  `json:"color"`
	Size    int     `json:"size,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

// Line styles guide lines and shape borders.
type Line struct {
	Color string  `json:"color"`
	Width float64 `json:"width,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

// Layout carries the figure-level presentation settings.
type Layout struct {
	Title       *Title       `json:"title,omitempty"`
	XAxis       *Axis        `json:"xaxis,omitempty"`
	YAxis       *Axis        `json:"yaxis,omitempty"`
	PlotBGColor string       `json:"plot_bgcolor,omitempty"`
	HoverMode   string       `json:"hovermode,omitempty"`
	BoxMode     string       `json:"boxmode,omitempty"`
	Margin      *Margin      `json:"margin,omitempty"`
	Legend      *Legend      `json:"legend,omitempty"`
	Shapes      []Shape      `json:"shapes,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Title is the text of a figure or axis title.
type Title struct {
	Text string `json:"text"`
}

// Axis configures one plot axis.
type Axis struct {
	Title          *Title     `json:"title,omitempty"`
	GridColor      string     `json:"gridcolor,omitempty"`
	ZeroLine       bool       `json:"zeroline,omitempty"`
	ZeroLineColor  string     `json:"zerolinecolor,omitempty"`
	ZeroLineWidth  float64    `json:"zerolinewidth,omitempty"`
	Range          *[2]float64 `json:"range,omitempty"`
}

// Margin sets the plot margins in pixels.
type Margin struct {
	L   int `json:"l"`
	R   int `json:"r"`
	B   int `json:"b"`
	T   int `json:"t"`
	Pad int `json:"pad,omitempty"`
}

// Legend positions the figure legend.
type Legend struct {
	Orientation string  `json:"orientation,omitempty"`
	YAnchor     string  `json:"yanchor,omitempty"`
	Y           float64 `json:"y,omitempty"`
	XAnchor     string  `json:"xanchor,omitempty"`
	X           float64 `json:"x,omitempty"`
}

// Shape is a layout shape, used here for threshold guide lines.
type Shape struct {
	Type string  `json:"type"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
	Y0   float64 `json:"y0"`
	Y1   float64 `json:"y1"`
	Line *Line   `json:"line,omitempty"`
}

// Annotation is a text label anchored to plot coordinates.
type Annotation struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Text      string  `json:"text"`
	ShowArrow bool    `json:"showarrow"`
	YShift    float64 `json:"yshift,omitempty"`
	Font      *Font   `json:"font,omitempty"`
}

// Font sets annotation text size.
type Font struct {
	Size int `json:"size,omitempty"`
}
