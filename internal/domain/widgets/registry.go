// Package widgets routes a widget's declared type to its render
// descriptor and normalizes the update-callback shape, so callers never
// branch per type.
package widgets

import (
	"github.com/corkboard/core/internal/domain/entities"
)

// Category partitions all widget types by the update contract their
// presentation component expects.
type Category string

const (
	// CategoryContent widgets update through a plain content string.
	CategoryContent Category = "content"
	// CategoryImage widgets render read-only; they never invoke an update.
	CategoryImage Category = "image"
	// CategorySpecialized widgets are single-purpose tools whose updates
	// are settings-shaped and routed through the generic settings path.
	CategorySpecialized Category = "specialized"
	// CategorySettings widgets update through a full replacement settings
	// object, persisted verbatim.
	CategorySettings Category = "settings"
	// CategoryUnknown marks an unregistered type rendered as a fallback.
	CategoryUnknown Category = "unknown"
)

// Descriptor is the static render/update contract for one widget type.
type Descriptor struct {
	Type     entities.WidgetType
	Category Category
	// Component names the presentation handler the client mounts.
	Component string
}

// RenderModel is the per-widget view emitted by the API. Fallback renders
// carry the raw type string and id so one bad record stays diagnosable
// without breaking the board.
type RenderModel struct {
	ID        string                `json:"id"`
	Component string                `json:"component"`
	Category  Category              `json:"category"`
	Content   string                `json:"content,omitempty"`
	Settings  entities.Settings     `json:"settings,omitempty"`
	Position  entities.Position     `json:"position"`
	Rotation  float64               `json:"rotation"`
	Size      *entities.Size        `json:"size,omitempty"`
	Fallback  bool                  `json:"fallback,omitempty"`
	RawType   string                `json:"raw_type,omitempty"`
}

// registry is the pure type -> descriptor lookup. It holds no state.
var registry = map[entities.WidgetType]Descriptor{
	entities.WidgetTypeNote:         {Type: entities.WidgetTypeNote, Category: CategoryContent, Component: "NoteWidget"},
	entities.WidgetTypeImage:        {Type: entities.WidgetTypeImage, Category: CategoryImage, Component: "ImageWidget"},
	entities.WidgetTypeTranslator:   {Type: entities.WidgetTypeTranslator, Category: CategorySpecialized, Component: "TranslatorWidget"},
	entities.WidgetTypeWeather:      {Type: entities.WidgetTypeWeather, Category: CategorySettings, Component: "WeatherWidget"},
	entities.WidgetTypePlant:        {Type: entities.WidgetTypePlant, Category: CategorySettings, Component: "PlantReminderWidget"},
	entities.WidgetTypeShoppingList: {Type: entities.WidgetTypeShoppingList, Category: CategorySettings, Component: "ShoppingListWidget"},
	entities.WidgetTypeCalendar:     {Type: entities.WidgetTypeCalendar, Category: CategorySettings, Component: "CalendarWidget"},
	entities.WidgetTypeTodoList:     {Type: entities.WidgetTypeTodoList, Category: CategorySettings, Component: "TodoListWidget"},
	entities.WidgetTypeTimer:        {Type: entities.WidgetTypeTimer, Category: CategorySettings, Component: "TimerWidget"},
	entities.WidgetTypeHabitTracker: {Type: entities.WidgetTypeHabitTracker, Category: CategorySettings, Component: "HabitTrackerWidget"},
	entities.WidgetTypeClock:        {Type: entities.WidgetTypeClock, Category: CategorySettings, Component: "ClockWidget"},
	entities.WidgetTypeCountdown:    {Type: entities.WidgetTypeCountdown, Category: CategorySettings, Component: "CountdownWidget"},
	entities.WidgetTypeQuote:        {Type: entities.WidgetTypeQuote, Category: CategorySettings, Component: "QuoteWidget"},
	entities.WidgetTypeBookmark:     {Type: entities.WidgetTypeBookmark, Category: CategorySettings, Component: "BookmarkWidget"},
	entities.WidgetTypeMoodTracker:  {Type: entities.WidgetTypeMoodTracker, Category: CategorySettings, Component: "MoodTrackerWidget"},
	entities.WidgetTypeSticker:      {Type: entities.WidgetTypeSticker, Category: CategorySettings, Component: "StickerWidget"},
}

// Dispatch returns the descriptor for a widget type. Unregistered types
// get the fallback descriptor rather than an error.
func Dispatch(t entities.WidgetType) Descriptor {
	if d, ok := registry[t]; ok {
		return d
	}
	return Descriptor{Type: t, Category: CategoryUnknown, Component: "FallbackWidget"}
}

// Registered reports whether the type has a render handler.
func Registered(t entities.WidgetType) bool {
	_, ok := registry[t]
	return ok
}

// Render builds the view model for one widget. Unknown types produce a
// visibly distinct fallback carrying the raw type and id; Render never
// fails.
func Render(w *entities.Widget) RenderModel {
	d := Dispatch(w.Type)
	m := RenderModel{
		ID:        w.ID.String(),
		Component: d.Component,
		Category:  d.Category,
		Position:  w.Position,
		Rotation:  w.Rotation,
		Size:      w.Size,
	}

	switch d.Category {
	case CategoryUnknown:
		m.Fallback = true
		m.RawType = string(w.Type)
	case CategoryContent, CategoryImage:
		m.Content = w.Content
	default:
		m.Content = w.Content
		m.Settings = w.Settings
	}
	return m
}
