package layout

import (
	"testing"

	"github.com/google/uuid"

	"github.com/corkboard/core/internal/domain/entities"
)

func widgetAt(y float64, z float64) *entities.Widget {
	w := &entities.Widget{
		ID:       uuid.New(),
		Type:     entities.WidgetTypeNote,
		Position: entities.Position{X: 10, Y: y},
	}
	w.Settings.SetZIndex(z)
	return w
}

func TestRowIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		y    float64
		want int
	}{
		{"origin", 0, 0},
		{"inside first row", 299, 0},
		{"first boundary", 300, 1},
		{"deep canvas", 930, 3},
		{"just above origin", -1, -1},
		{"fractional above origin", -0.5, -1},
		{"negative boundary", -300, -1},
		{"below negative boundary", -301, -2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RowIndex(tt.y, RowHeight); got != tt.want {
				t.Errorf("RowIndex(%v) = %d, want %d", tt.y, got, tt.want)
			}
		})
	}
}

func TestRowLocalRoundTrip(t *testing.T) {
	t.Parallel()

	// rowTop + local offset must reconstruct the original coordinate.
	for _, y := range []float64{0, 1, 299, 300, 930, -1, -0.5, -300, -301, 12345.25} {
		idx := RowIndex(y, RowHeight)
		local := RowLocal(y, RowHeight)
		if local < 0 || local >= RowHeight {
			t.Errorf("RowLocal(%v) = %v, outside [0, %d)", y, local, RowHeight)
		}
		if got := float64(idx*RowHeight) + local; got != y {
			t.Errorf("row %d + local %v = %v, want %v", idx, local, got, y)
		}
	}
}

func TestBucketEmpty(t *testing.T) {
	t.Parallel()

	if rows := Bucket(nil, RowHeight); rows != nil {
		t.Errorf("Bucket(nil) = %v, want nil", rows)
	}
}

func TestBucketContiguousRows(t *testing.T) {
	t.Parallel()

	// Widgets in rows 0 and 3 only; rows 1 and 2 must still exist, empty.
	widgets := []*entities.Widget{
		widgetAt(50, 0),
		widgetAt(930, 0),
	}

	rows := Bucket(widgets, RowHeight)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	for i, row := range rows {
		if row.Index != i {
			t.Errorf("rows[%d].Index = %d, want %d", i, row.Index, i)
		}
	}
	if len(rows[1].Widgets) != 0 || len(rows[2].Widgets) != 0 {
		t.Error("interior rows should be empty buckets")
	}
	if len(rows[0].Widgets) != 1 || len(rows[3].Widgets) != 1 {
		t.Error("occupied rows should hold their widgets")
	}
}

func TestBucketStripStartsAtRowZero(t *testing.T) {
	t.Parallel()

	// A lone widget deep in the canvas must not pull the strip origin down
	// to its own row; rows 0 and 1 exist as empty buckets above it.
	rows := Bucket([]*entities.Widget{widgetAt(750, 0)}, RowHeight)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		if row.Index != i {
			t.Errorf("rows[%d].Index = %d, want %d", i, row.Index, i)
		}
	}
	if len(rows[2].Widgets) != 1 {
		t.Error("row 2 should hold the widget")
	}
}

func TestBucketWindowAbsolutePosition(t *testing.T) {
	t.Parallel()

	// Composed property: for y >= 0, the windowed row's top plus the
	// widget's row-local offset reconstructs the original coordinate.
	for _, y := range []float64{0, 50, 299, 300, 930, 2050} {
		rows := Bucket([]*entities.Widget{widgetAt(y, 0)}, RowHeight)
		v := NewVirtualizer(RowHeight)
		win := v.Visible(len(rows), Viewport{ScrollTop: y, Height: RowHeight})

		var found bool
		for _, vr := range win.Rows {
			if len(rows[vr.Index].Widgets) == 0 {
				continue
			}
			found = true
			if got := vr.Top + RowLocal(y, RowHeight); got != y {
				t.Errorf("row top %v + local %v = %v, want %v", vr.Top, RowLocal(y, RowHeight), got, y)
			}
		}
		if !found {
			t.Errorf("widget at y=%v missing from its viewport window", y)
		}
	}
}

func TestBucketNegativeRows(t *testing.T) {
	t.Parallel()

	widgets := []*entities.Widget{
		widgetAt(-450, 0), // row -2
		widgetAt(100, 0),  // row 0
	}

	rows := Bucket(widgets, RowHeight)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Index != -2 || rows[2].Index != 0 {
		t.Errorf("row index range = [%d, %d], want [-2, 0]", rows[0].Index, rows[2].Index)
	}
	if len(rows[0].Widgets) != 1 {
		t.Error("row -2 should hold the negative-coordinate widget")
	}
}

func TestBucketPaintOrder(t *testing.T) {
	t.Parallel()

	a := widgetAt(10, 5)
	b := widgetAt(20, 1)
	c := widgetAt(30, 5) // ties with a; insertion order must hold

	rows := Bucket([]*entities.Widget{a, b, c}, RowHeight)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	order := rows[0].Widgets
	if order[0] != b || order[1] != a || order[2] != c {
		t.Errorf("paint order = [%v %v %v], want [b a c]", order[0].ID, order[1].ID, order[2].ID)
	}
}

func TestBucketMissingZIndexTreatedAsZero(t *testing.T) {
	t.Parallel()

	bare := &entities.Widget{ID: uuid.New(), Position: entities.Position{Y: 10}}
	raised := widgetAt(20, 3)
	sunk := widgetAt(30, -2)

	rows := Bucket([]*entities.Widget{raised, bare, sunk}, RowHeight)
	order := rows[0].Widgets
	if order[0] != sunk || order[1] != bare || order[2] != raised {
		t.Error("widget without zIndex should sort as zero")
	}
}

func TestBucketDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	a := widgetAt(10, 2)
	b := widgetAt(20, 1)
	in := []*entities.Widget{a, b}

	Bucket(in, RowHeight)

	if in[0] != a || in[1] != b {
		t.Error("input slice order changed")
	}
}
