// Package layout implements the pure canvas-layout core: partitioning
// widgets into fixed-height rows and windowing those rows against a
// scroll viewport.
package layout

import (
	"sort"

	"github.com/corkboard/core/internal/domain/entities"
)

// RowHeight is the fixed height of one row bucket, in logical canvas units.
const RowHeight = 300

// Row is one fixed-height horizontal band of the canvas. Widgets are kept
// in paint order: ascending zIndex, insertion order on ties.
type Row struct {
	Index   int
	Widgets []*entities.Widget
}

// RowIndex maps a vertical coordinate to its row bucket. Negative
// coordinates map to negative indices; they are valid buckets.
func RowIndex(y float64, rowHeight int) int {
	return floorDiv(y, rowHeight)
}

// RowLocal converts a vertical coordinate to its offset from the top of
// its row, so that rowTop + RowLocal(y) == y.
func RowLocal(y float64, rowHeight int) float64 {
	return y - float64(RowIndex(y, rowHeight)*rowHeight)
}

// Bucket partitions widgets into contiguous row buckets covering rows
// 0..maxRow, extended below zero only when a widget sits at a negative
// coordinate. Rows with no widget are present as empty buckets so the
// index sequence has no gaps and a row's top is always its index times
// the row height. The input is not mutated; the result is a pure
// function of the widget list.
func Bucket(widgets []*entities.Widget, rowHeight int) []Row {
	if len(widgets) == 0 {
		return nil
	}

	minRow, maxRow := 0, 0
	for _, w := range widgets {
		idx := RowIndex(w.Position.Y, rowHeight)
		if idx < minRow {
			minRow = idx
		}
		if idx > maxRow {
			maxRow = idx
		}
	}

	rows := make([]Row, maxRow-minRow+1)
	for i := range rows {
		rows[i].Index = minRow + i
	}
	for _, w := range widgets {
		i := RowIndex(w.Position.Y, rowHeight) - minRow
		rows[i].Widgets = append(rows[i].Widgets, w)
	}

	for i := range rows {
		ws := rows[i].Widgets
		sort.SliceStable(ws, func(a, b int) bool {
			return ws[a].ZIndex() < ws[b].ZIndex()
		})
	}

	return rows
}

// floorDiv divides toward negative infinity, unlike Go's truncating
// integer division, so y = -1 lands in row -1 rather than row 0.
func floorDiv(y float64, rowHeight int) int {
	q := int(y) / rowHeight
	if y < 0 && float64(q*rowHeight) != y {
		q--
	}
	return q
}
