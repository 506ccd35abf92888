package entities

import (
	"testing"

	"github.com/google/uuid"
)

func TestWidgetRotate(t *testing.T) {
	t.Parallel()

	w := &Widget{ID: uuid.New(), Type: WidgetTypeNote}

	w.Rotate()
	if w.Rotation != 15 {
		t.Errorf("after one step Rotation = %v, want 15", w.Rotation)
	}

	// 24 steps wrap back to the starting angle.
	for i := 0; i < 23; i++ {
		w.Rotate()
	}
	if w.Rotation != 0 {
		t.Errorf("after full circle Rotation = %v, want 0", w.Rotation)
	}

	// The settings bag must track the field so the angle survives a
	// settings write.
	w.Rotate()
	if got := w.Settings.Rotation(); got != w.Rotation {
		t.Errorf("settings rotation = %v, field = %v", got, w.Rotation)
	}
}

func TestWidgetClamp(t *testing.T) {
	t.Parallel()

	w := &Widget{Type: WidgetTypeNote, Size: &Size{Width: 200, Height: 100}}
	container := Bounds{Width: 1000, Height: 600}

	tests := []struct {
		name string
		in   Position
		want Position
	}{
		{"inside stays put", Position{X: 300, Y: 200}, Position{X: 300, Y: 200}},
		{"negative clamps to origin", Position{X: -50, Y: -10}, Position{X: 0, Y: 0}},
		{"right edge accounts for width", Position{X: 950, Y: 200}, Position{X: 800, Y: 200}},
		{"bottom edge accounts for height", Position{X: 300, Y: 590}, Position{X: 300, Y: 500}},
		{"far corner", Position{X: 5000, Y: 5000}, Position{X: 800, Y: 500}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := w.Clamp(tt.in, container); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWidgetClampUnknownContainer(t *testing.T) {
	t.Parallel()

	// Without container bounds only negative coordinates are forbidden.
	w := &Widget{Type: WidgetTypeNote}
	if got := w.Clamp(Position{X: -5, Y: 9000}, Bounds{}); got != (Position{X: 0, Y: 9000}) {
		t.Errorf("Clamp = %v, want {0 9000}", got)
	}
}

func TestWidgetClampOversizedWidget(t *testing.T) {
	t.Parallel()

	// A widget larger than the container pins to the origin rather than
	// going negative.
	w := &Widget{Type: WidgetTypeNote, Size: &Size{Width: 2000, Height: 2000}}
	got := w.Clamp(Position{X: 100, Y: 100}, Bounds{Width: 1000, Height: 600})
	if got != (Position{X: 0, Y: 0}) {
		t.Errorf("Clamp = %v, want origin", got)
	}
}

func TestSettingsZIndex(t *testing.T) {
	t.Parallel()

	var s Settings
	if s.ZIndex() != 0 {
		t.Error("nil settings should read zIndex 0")
	}

	s.SetZIndex(7)
	if s.ZIndex() != 7 {
		t.Errorf("ZIndex = %v, want 7", s.ZIndex())
	}

	// JSON round-trips store numbers as float64; ints appear from
	// direct construction.
	s["zIndex"] = 3
	if s.ZIndex() != 3 {
		t.Errorf("int zIndex = %v, want 3", s.ZIndex())
	}
	s["zIndex"] = "front"
	if s.ZIndex() != 0 {
		t.Error("malformed zIndex should read as 0")
	}
}

func TestDefaultContent(t *testing.T) {
	t.Parallel()

	if got := WidgetTypeNote.DefaultContent("hello"); got != "hello" {
		t.Errorf("note content = %q, want hello", got)
	}
	if got := WidgetTypeWeather.DefaultContent("ignored"); got != "weather" {
		t.Errorf("weather content = %q, want type-name placeholder", got)
	}
	if got := WidgetTypeShoppingList.DefaultContent(""); got != "shopping_list" {
		t.Errorf("shopping list content = %q, want shopping_list", got)
	}
}

func TestUserBoardPermissions(t *testing.T) {
	t.Parallel()

	owner := &User{ID: uuid.New(), Role: UserRoleEditor, IsActive: true}
	admin := &User{ID: uuid.New(), Role: UserRoleAdmin, IsActive: true}
	other := &User{ID: uuid.New(), Role: UserRoleEditor, IsActive: true}
	inactive := &User{ID: owner.ID, Role: UserRoleEditor, IsActive: false}

	private := &Board{ID: uuid.New(), OwnerID: owner.ID}
	public := &Board{ID: uuid.New(), OwnerID: owner.ID, IsPublic: true}

	if !owner.CanEditBoard(private) || !admin.CanEditBoard(private) {
		t.Error("owner and admin must be able to edit")
	}
	if other.CanEditBoard(private) {
		t.Error("non-owner editor must not edit another's board")
	}
	if inactive.CanEditBoard(private) {
		t.Error("inactive account must not edit")
	}
	if !other.CanViewBoard(public) {
		t.Error("public boards are viewable by anyone")
	}
	if other.CanViewBoard(private) {
		t.Error("private boards hidden from non-owners")
	}
}
