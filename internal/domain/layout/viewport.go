package layout

// DefaultOverscan is the number of extra rows rendered above and below
// the visible viewport to avoid pop-in during fast scroll.
const DefaultOverscan = 3

// Viewport describes the visible window over the scrollable canvas.
type Viewport struct {
	ScrollTop float64
	Height    float64
}

// VisibleRow is one row the client should currently have mounted.
type VisibleRow struct {
	Index  int     `json:"index"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

// Window is the windowing result for one scroll position.
type Window struct {
	TotalHeight float64      `json:"total_height"`
	Rows        []VisibleRow `json:"rows"`
}

// Virtualizer windows row buckets against a scroll viewport. It holds
// only constants; recomputation happens on every Visible call and never
// touches widget data.
type Virtualizer struct {
	RowHeight int
	Overscan  int
}

// NewVirtualizer returns a virtualizer with the given row height,
// defaulting overscan.
func NewVirtualizer(rowHeight int) Virtualizer {
	return Virtualizer{RowHeight: rowHeight, Overscan: DefaultOverscan}
}

// Visible reports which of bucketCount rows intersect the viewport plus
// the overscan margin, with each row's top offset and height.
func (v Virtualizer) Visible(bucketCount int, vp Viewport) Window {
	rh := float64(v.RowHeight)
	win := Window{TotalHeight: float64(bucketCount) * rh}
	if bucketCount <= 0 || vp.Height <= 0 {
		return win
	}

	first := int(vp.ScrollTop/rh) - v.Overscan
	if first < 0 {
		first = 0
	}
	last := int((vp.ScrollTop+vp.Height)/rh) + v.Overscan
	if last > bucketCount-1 {
		last = bucketCount - 1
	}

	for i := first; i <= last; i++ {
		win.Rows = append(win.Rows, VisibleRow{
			Index:  i,
			Top:    float64(i) * rh,
			Height: rh,
		})
	}
	return win
}
