package entities

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrWidgetNotFound       = errors.New("widget not found")
	ErrBoardNotFound        = errors.New("board not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrPositionOutOfBounds  = errors.New("position outside board bounds")
	ErrUnknownWidgetType    = errors.New("unknown widget type")
	ErrBoardFull            = errors.New("board widget limit reached")
	ErrDragInProgress       = errors.New("another drag is already in progress")
	ErrNoDragInProgress     = errors.New("no drag in progress")
	ErrNothingSelected      = errors.New("no widget selected")
	ErrBoardNotPublic       = errors.New("board is not public")
	ErrInvalidFileType      = errors.New("invalid file type")
	ErrFileTooLarge         = errors.New("file exceeds size limit")
)

// Enums and types
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
	UserRoleViewer UserRole = "viewer"
)

// WidgetType is the closed enumeration of widget kinds that can live on a board.
type WidgetType string

const (
	WidgetTypeNote         WidgetType = "note"
	WidgetTypeImage        WidgetType = "image"
	WidgetTypeTranslator   WidgetType = "translator"
	WidgetTypeWeather      WidgetType = "weather"
	WidgetTypePlant        WidgetType = "plant_reminder"
	WidgetTypeShoppingList WidgetType = "shopping_list"
	WidgetTypeCalendar     WidgetType = "calendar"
	WidgetTypeTodoList     WidgetType = "todo_list"
	WidgetTypeTimer        WidgetType = "timer"
	WidgetTypeHabitTracker WidgetType = "habit_tracker"
	WidgetTypeClock        WidgetType = "clock"
	WidgetTypeCountdown    WidgetType = "countdown"
	WidgetTypeQuote        WidgetType = "quote"
	WidgetTypeBookmark     WidgetType = "bookmark"
	WidgetTypeMoodTracker  WidgetType = "mood_tracker"
	WidgetTypeSticker      WidgetType = "sticker"
)

// RotationStep is the angle added by each rotate action.
const RotationStep = 15.0

// Position is a point on the board's logical canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is an optional pixel extent for a widget.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Settings is the open-ended per-widget key/value bag. Stored as JSONB;
// only "zIndex" carries cross-cutting meaning (paint order).
type Settings map[string]interface{}

// ZIndex returns the stacking order value, treating a missing key as 0.
func (s Settings) ZIndex() float64 {
	if s == nil {
		return 0
	}
	switch v := s["zIndex"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// SetZIndex replaces the stacking order value, allocating the map when needed.
func (s *Settings) SetZIndex(z float64) {
	if *s == nil {
		*s = Settings{}
	}
	(*s)["zIndex"] = z
}

// Rotation returns the decorative angle stored in the bag, 0 when absent.
// Rotation rides in settings so the rotate action persists through the
// same full-replace settings path as every other settings edit.
func (s Settings) Rotation() float64 {
	if s == nil {
		return 0
	}
	if v, ok := s["rotation"].(float64); ok {
		return v
	}
	return 0
}

// SetRotation replaces the decorative angle in the bag.
func (s *Settings) SetRotation(deg float64) {
	if *s == nil {
		*s = Settings{}
	}
	(*s)["rotation"] = deg
}

// Widget represents a single positionable, typed object on a board.
type Widget struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	BoardID   uuid.UUID  `json:"board_id" db:"board_id"`
	Type      WidgetType `json:"type" db:"type"`
	Content   string     `json:"content" db:"content"`
	Position  Position   `json:"position"`
	// Rotation is the hydrated view of settings["rotation"].
	Rotation float64 `json:"rotation" db:"-"`
	Size     *Size   `json:"size,omitempty"`
	Settings  Settings   `json:"settings" db:"settings"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Board represents a named, ownership-scoped container of widgets.
type Board struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	OwnerID   uuid.UUID  `json:"owner_id" db:"owner_id"`
	IsPublic  bool       `json:"is_public" db:"is_public"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
}

// User represents a user in the system.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         UserRole   `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" db:"deleted_at"`
}

// Bounds describes the rectangle widget positions must stay inside.
type Bounds struct {
	Width  float64
	Height float64
}

// Valid reports whether the container extent is usable for clamping.
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0
}

// Business logic methods for Widget

// Rotate advances the decorative angle by one step, wrapping at 360, and
// keeps the settings bag in sync so the change persists through the
// settings path.
func (w *Widget) Rotate() {
	w.Rotation = math.Mod(w.Rotation+RotationStep, 360)
	w.Settings.SetRotation(w.Rotation)
}

// EffectiveSize returns the widget's extent, falling back to the type default.
func (w *Widget) EffectiveSize() Size {
	if w.Size != nil {
		return *w.Size
	}
	return DefaultSize(w.Type)
}

// ZIndex returns the widget's stacking order value.
func (w *Widget) ZIndex() float64 {
	return w.Settings.ZIndex()
}

// Clamp constrains a candidate position so the widget stays inside the
// container. When container bounds are unknown it only forbids negative
// coordinates.
func (w *Widget) Clamp(p Position, container Bounds) Position {
	size := w.EffectiveSize()
	if !container.Valid() {
		return Position{X: math.Max(0, p.X), Y: math.Max(0, p.Y)}
	}
	maxX := math.Max(0, container.Width-size.Width)
	maxY := math.Max(0, container.Height-size.Height)
	return Position{
		X: math.Min(math.Max(0, p.X), maxX),
		Y: math.Min(math.Max(0, p.Y), maxY),
	}
}

// ContentBearing reports whether the content field carries the widget's
// primary payload rather than a type-name placeholder.
func (t WidgetType) ContentBearing() bool {
	switch t {
	case WidgetTypeNote, WidgetTypeImage, WidgetTypeTranslator:
		return true
	default:
		return false
	}
}

// DefaultContent returns the initial content for a widget of this type.
// Settings-driven types carry a constant placeholder equal to the type name.
func (t WidgetType) DefaultContent(content string) string {
	if t.ContentBearing() {
		return content
	}
	return string(t)
}

// DefaultSize returns the per-type default extent.
func DefaultSize(t WidgetType) Size {
	switch t {
	case WidgetTypeNote:
		return Size{Width: 220, Height: 220}
	case WidgetTypeImage:
		return Size{Width: 260, Height: 200}
	case WidgetTypeCalendar:
		return Size{Width: 300, Height: 280}
	case WidgetTypeSticker:
		return Size{Width: 96, Height: 96}
	default:
		return Size{Width: 240, Height: 240}
	}
}

// Utility methods

func (t WidgetType) IsValid() bool {
	switch t {
	case WidgetTypeNote, WidgetTypeImage, WidgetTypeTranslator, WidgetTypeWeather,
		WidgetTypePlant, WidgetTypeShoppingList, WidgetTypeCalendar, WidgetTypeTodoList,
		WidgetTypeTimer, WidgetTypeHabitTracker, WidgetTypeClock, WidgetTypeCountdown,
		WidgetTypeQuote, WidgetTypeBookmark, WidgetTypeMoodTracker, WidgetTypeSticker:
		return true
	default:
		return false
	}
}

func (ur UserRole) IsValid() bool {
	switch ur {
	case UserRoleAdmin, UserRoleEditor, UserRoleViewer:
		return true
	default:
		return false
	}
}

// CanEditBoard reports whether the user may mutate the given board.
func (u *User) CanEditBoard(board *Board) bool {
	if !u.IsActive {
		return false
	}
	if u.Role == UserRoleAdmin {
		return true
	}
	return board.OwnerID == u.ID
}

// CanViewBoard reports whether the user may read the given board.
func (u *User) CanViewBoard(board *Board) bool {
	if board.IsPublic {
		return true
	}
	return u.CanEditBoard(board)
}
