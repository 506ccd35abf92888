package layout

import "testing"

func rowIndices(win Window) []int {
	out := make([]int, len(win.Rows))
	for i, r := range win.Rows {
		out[i] = r.Index
	}
	return out
}

func TestVisibleWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		buckets   int
		vp        Viewport
		wantFirst int
		wantLast  int
	}{
		{
			name:    "top of canvas clamps overscan at zero",
			buckets: 20,
			vp:      Viewport{ScrollTop: 0, Height: 900},
			// rows 0..3 visible, +3 overscan below
			wantFirst: 0,
			wantLast:  6,
		},
		{
			name:      "mid scroll includes overscan both sides",
			buckets:   40,
			vp:        Viewport{ScrollTop: 3000, Height: 900},
			wantFirst: 7,
			wantLast:  16,
		},
		{
			name:      "bottom of canvas clamps at last bucket",
			buckets:   10,
			vp:        Viewport{ScrollTop: 2700, Height: 900},
			wantFirst: 6,
			wantLast:  9,
		},
		{
			name:      "single bucket",
			buckets:   1,
			vp:        Viewport{ScrollTop: 0, Height: 900},
			wantFirst: 0,
			wantLast:  0,
		},
	}

	v := NewVirtualizer(RowHeight)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			win := v.Visible(tt.buckets, tt.vp)

			if want := float64(tt.buckets) * RowHeight; win.TotalHeight != want {
				t.Errorf("TotalHeight = %v, want %v", win.TotalHeight, want)
			}

			idx := rowIndices(win)
			if len(idx) == 0 {
				t.Fatal("no rows in window")
			}
			if idx[0] != tt.wantFirst || idx[len(idx)-1] != tt.wantLast {
				t.Errorf("window = [%d, %d], want [%d, %d]", idx[0], idx[len(idx)-1], tt.wantFirst, tt.wantLast)
			}
			for i := 1; i < len(idx); i++ {
				if idx[i] != idx[i-1]+1 {
					t.Fatalf("window indices not contiguous: %v", idx)
				}
			}
		})
	}
}

func TestVisibleRowGeometry(t *testing.T) {
	t.Parallel()

	v := NewVirtualizer(RowHeight)
	win := v.Visible(10, Viewport{ScrollTop: 600, Height: 300})

	for _, row := range win.Rows {
		if want := float64(row.Index) * RowHeight; row.Top != want {
			t.Errorf("row %d Top = %v, want %v", row.Index, row.Top, want)
		}
		if row.Height != RowHeight {
			t.Errorf("row %d Height = %v, want %v", row.Index, row.Height, float64(RowHeight))
		}
	}
}

func TestVisibleDegenerateViewport(t *testing.T) {
	t.Parallel()

	v := NewVirtualizer(RowHeight)

	if win := v.Visible(0, Viewport{ScrollTop: 0, Height: 900}); len(win.Rows) != 0 || win.TotalHeight != 0 {
		t.Errorf("empty board: rows=%d total=%v, want none", len(win.Rows), win.TotalHeight)
	}
	if win := v.Visible(10, Viewport{}); len(win.Rows) != 0 {
		t.Errorf("zero-height viewport: rows=%d, want none", len(win.Rows))
	}
}

func TestVisibleStableUnderRepetition(t *testing.T) {
	t.Parallel()

	// Same scroll position, same window: recomputation must be pure.
	v := NewVirtualizer(RowHeight)
	vp := Viewport{ScrollTop: 1234, Height: 800}

	first := v.Visible(30, vp)
	for i := 0; i < 5; i++ {
		again := v.Visible(30, vp)
		if len(again.Rows) != len(first.Rows) || again.TotalHeight != first.TotalHeight {
			t.Fatal("window changed across identical calls")
		}
		for j := range again.Rows {
			if again.Rows[j] != first.Rows[j] {
				t.Fatal("row geometry changed across identical calls")
			}
		}
	}
}
