package services

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/infrastructure/logger"
)

// dragSession tracks one in-progress pointer drag. The session holds the
// position captured at drag start and the latest cumulative delta; only
// the final frame's position is authoritative, so skipped intermediate
// moves lose nothing.
type dragSession struct {
	widgetID uuid.UUID
	widget   *entities.Widget
	start    entities.Position
	dx, dy   float64
	live     entities.Position
}

// boardSession is one user's interaction state on a board: the single
// selected widget and the single-slot drag holder. A nil drag pointer is
// the Idle state; the slot being a pointer rather than a map makes the
// one-active-drag invariant structural.
type boardSession struct {
	selected *uuid.UUID
	drag     *dragSession
}

// SessionService owns per-user board interaction state: selection and the
// drag/position reconciler. Committed positions go through the widget
// service; everything before drag-end stays local to the session.
type SessionService struct {
	widgets *WidgetService
	logger  *logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*boardSession
}

// NewSessionService creates a new session service
func NewSessionService(widgets *WidgetService, logger *logger.Logger) *SessionService {
	return &SessionService{
		widgets:  widgets,
		logger:   logger,
		sessions: make(map[uuid.UUID]*boardSession),
	}
}

func (s *SessionService) session(userID uuid.UUID) *boardSession {
	bs, ok := s.sessions[userID]
	if !ok {
		bs = &boardSession{}
		s.sessions[userID] = bs
	}
	return bs
}

// Select records the single currently-selected widget for the user.
func (s *SessionService) Select(userID, widgetID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := widgetID
	s.session(userID).selected = &id
}

// ClearSelection clears the selection, as when the board background is
// clicked.
func (s *SessionService) ClearSelection(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(userID).selected = nil
}

// Selected returns the currently-selected widget id, if any.
func (s *SessionService) Selected(userID uuid.UUID) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.session(userID).selected
	if sel == nil {
		return uuid.Nil, false
	}
	return *sel, true
}

// RotateSelected advances the selected widget's rotation. With nothing
// selected it is a no-op and returns nil.
func (s *SessionService) RotateSelected(ctx context.Context, userID uuid.UUID) (*entities.Widget, error) {
	id, ok := s.Selected(userID)
	if !ok {
		return nil, nil
	}
	return s.widgets.Rotate(ctx, id)
}

// BringSelectedToFront raises the selected widget. No-op without a selection.
func (s *SessionService) BringSelectedToFront(ctx context.Context, userID uuid.UUID) (*entities.Widget, error) {
	id, ok := s.Selected(userID)
	if !ok {
		return nil, nil
	}
	return s.widgets.BringToFront(ctx, id)
}

// SendSelectedToBack lowers the selected widget. No-op without a selection.
func (s *SessionService) SendSelectedToBack(ctx context.Context, userID uuid.UUID) (*entities.Widget, error) {
	id, ok := s.Selected(userID)
	if !ok {
		return nil, nil
	}
	return s.widgets.SendToBack(ctx, id)
}

// DeleteSelected removes the selected widget and clears the selection.
// No-op without a selection.
func (s *SessionService) DeleteSelected(ctx context.Context, userID uuid.UUID) error {
	id, ok := s.Selected(userID)
	if !ok {
		return nil
	}
	if err := s.widgets.DeleteWidget(ctx, id); err != nil {
		return err
	}
	s.ClearSelection(userID)
	return nil
}

// StartDrag enters the Dragging state for one widget, capturing its
// position at that instant. A second start while a drag is active is
// rejected.
func (s *SessionService) StartDrag(ctx context.Context, userID, widgetID uuid.UUID) (*entities.Widget, error) {
	widget, err := s.widgets.GetWidget(ctx, widgetID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bs := s.session(userID)
	if bs.drag != nil {
		return nil, entities.ErrDragInProgress
	}
	bs.drag = &dragSession{
		widgetID: widgetID,
		widget:   widget,
		start:    widget.Position,
		live:     widget.Position,
	}
	return widget, nil
}

// MoveDrag applies the latest cumulative delta and returns the
// constrained live position. Nothing is persisted; the live position is
// what the client renders during the gesture.
func (s *SessionService) MoveDrag(userID uuid.UUID, dx, dy float64) (entities.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs := s.session(userID)
	if bs.drag == nil {
		return entities.Position{}, entities.ErrNoDragInProgress
	}

	d := bs.drag
	d.dx, d.dy = dx, dy
	candidate := entities.Position{X: d.start.X + dx, Y: d.start.Y + dy}
	d.live = d.widget.Clamp(candidate, s.widgets.Bounds())
	return d.live, nil
}

// LivePosition reports the in-flight position for a widget when the user
// is dragging it, letting reads reflect the gesture before commit.
func (s *SessionService) LivePosition(userID, widgetID uuid.UUID) (entities.Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs, ok := s.sessions[userID]
	if !ok || bs.drag == nil || bs.drag.widgetID != widgetID {
		return entities.Position{}, false
	}
	return bs.drag.live, true
}

// EndDrag leaves the Dragging state. A zero cumulative delta discards the
// gesture with no side effect. Otherwise the final constrained position is
// committed exactly once, with integer-rounded coordinates; the session
// state is cleared before the commit, so a persistence failure surfaces
// to the caller without leaving a stuck drag.
func (s *SessionService) EndDrag(ctx context.Context, userID uuid.UUID) (*entities.Position, error) {
	s.mu.Lock()
	bs := s.session(userID)
	d := bs.drag
	bs.drag = nil
	s.mu.Unlock()

	if d == nil {
		return nil, entities.ErrNoDragInProgress
	}
	if d.dx == 0 && d.dy == 0 {
		return nil, nil
	}

	final := d.widget.Clamp(entities.Position{X: d.start.X + d.dx, Y: d.start.Y + d.dy}, s.widgets.Bounds())
	x := int(math.Round(final.X))
	y := int(math.Round(final.Y))

	if err := s.widgets.UpdatePosition(ctx, d.widgetID, x, y); err != nil {
		s.logger.Warn("Drag commit failed", "error", err, "widget_id", d.widgetID)
		return nil, err
	}

	committed := entities.Position{X: float64(x), Y: float64(y)}
	return &committed, nil
}
