package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/domain/layout"
	"github.com/corkboard/core/internal/domain/widgets"
	"github.com/corkboard/core/internal/infrastructure/config"
	"github.com/corkboard/core/internal/infrastructure/logger"
	"github.com/corkboard/core/internal/ports"
)

// BoardRow is one rendered row bucket: the row's placement plus the view
// models of its widgets in paint order, positioned row-locally.
type BoardRow struct {
	Index   int                   `json:"index"`
	Top     float64               `json:"top"`
	Height  float64               `json:"height"`
	Widgets []widgets.RenderModel `json:"widgets"`
}

// BoardView is the windowed render of one board for one viewport.
type BoardView struct {
	TotalHeight float64    `json:"total_height"`
	Rows        []BoardRow `json:"rows"`
}

// WidgetService orchestrates widget mutations against the persistence
// layer and fans resulting change events out to subscribers.
type WidgetService struct {
	widgetRepo ports.WidgetRepository
	cache      ports.BoardCache
	publisher  ports.Publisher
	cfg        config.BoardConfig
	logger     *logger.Logger
}

// NewWidgetService creates a new widget service
func NewWidgetService(widgetRepo ports.WidgetRepository, cache ports.BoardCache, publisher ports.Publisher, cfg config.BoardConfig, logger *logger.Logger) *WidgetService {
	if cfg.RowHeight <= 0 {
		cfg.RowHeight = layout.RowHeight
	}
	if cfg.Overscan <= 0 {
		cfg.Overscan = layout.DefaultOverscan
	}
	return &WidgetService{
		widgetRepo: widgetRepo,
		cache:      cache,
		publisher:  publisher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Bounds returns the container rectangle widget positions are clamped to.
func (s *WidgetService) Bounds() entities.Bounds {
	return entities.Bounds{Width: s.cfg.ContainerWidth, Height: s.cfg.ContainerHeight}
}

// ListWidgets retrieves a board's widget set, fronted by the snapshot cache.
func (s *WidgetService) ListWidgets(ctx context.Context, boardID uuid.UUID) ([]*entities.Widget, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetWidgets(ctx, boardID); ok {
			return cached, nil
		}
	}

	list, err := s.widgetRepo.ListByBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list widgets: %w", err)
	}

	if s.cache != nil {
		s.cache.SetWidgets(ctx, boardID, list)
	}
	return list, nil
}

// GetWidget retrieves a single widget by id.
func (s *WidgetService) GetWidget(ctx context.Context, id uuid.UUID) (*entities.Widget, error) {
	widget, err := s.widgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("widget not found: %w", err)
	}
	return widget, nil
}

// View composes the bucketer and the virtualizer: it buckets the board's
// widgets into fixed-height rows, windows those rows against the
// viewport, and emits render models with row-local vertical coordinates.
func (s *WidgetService) View(ctx context.Context, boardID uuid.UUID, vp layout.Viewport) (*BoardView, error) {
	list, err := s.ListWidgets(ctx, boardID)
	if err != nil {
		return nil, err
	}

	rows := layout.Bucket(list, s.cfg.RowHeight)
	v := layout.Virtualizer{RowHeight: s.cfg.RowHeight, Overscan: s.cfg.Overscan}
	win := v.Visible(len(rows), vp)

	view := &BoardView{TotalHeight: win.TotalHeight}
	for _, vr := range win.Rows {
		if vr.Index >= len(rows) {
			continue
		}
		// vr.Index is an offset into the bucket strip; the bucket itself
		// carries the canvas row index, which can start below zero.
		row := BoardRow{Index: rows[vr.Index].Index, Top: vr.Top, Height: vr.Height}
		for _, w := range rows[vr.Index].Widgets {
			m := widgets.Render(w)
			m.Position.Y = layout.RowLocal(w.Position.Y, s.cfg.RowHeight)
			row.Widgets = append(row.Widgets, m)
		}
		view.Rows = append(view.Rows, row)
	}
	return view, nil
}

// AddWidget validates the proposed position envelope, fills per-type
// defaults, and forwards the widget to the persistence layer.
// Out-of-envelope requests are rejected with no mutation.
func (s *WidgetService) AddWidget(ctx context.Context, boardID uuid.UUID, req ports.CreateWidgetRequest) (*entities.Widget, error) {
	if !req.Type.IsValid() {
		return nil, entities.ErrUnknownWidgetType
	}
	if !s.withinEnvelope(req.X, req.Y) {
		return nil, entities.ErrPositionOutOfBounds
	}

	list, err := s.ListWidgets(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxWidgets > 0 && len(list) >= s.cfg.MaxWidgets {
		return nil, entities.ErrBoardFull
	}

	settings := req.Settings
	if settings == nil {
		settings = entities.Settings{}
	}

	maxZ, _ := zRange(list)
	settings.SetZIndex(maxZ + 1)

	// Decorative tilt, like a pin pushed in by hand.
	rotation := rand.Float64()*12 - 6
	settings.SetRotation(rotation)

	widget := &entities.Widget{
		ID:        uuid.New(),
		BoardID:   boardID,
		Type:      req.Type,
		Content:   req.Type.DefaultContent(req.Content),
		Position:  entities.Position{X: req.X, Y: req.Y},
		Rotation:  rotation,
		Settings:  settings,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.widgetRepo.Create(ctx, widget); err != nil {
		return nil, fmt.Errorf("failed to create widget: %w", err)
	}

	s.invalidate(ctx, boardID)
	s.publish(ctx, ports.Event{Type: ports.EventWidgetInserted, BoardID: boardID, Widget: widget})

	s.logger.Info("Widget created successfully", "widget_id", widget.ID, "board_id", boardID, "type", widget.Type)

	return widget, nil
}

// UpdatePosition commits a widget's position. Coordinates are integers at
// this boundary; the drag reconciler rounds before calling.
func (s *WidgetService) UpdatePosition(ctx context.Context, id uuid.UUID, x, y int) error {
	widget, err := s.widgetRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("widget not found: %w", err)
	}

	if err := s.widgetRepo.UpdatePosition(ctx, id, x, y); err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}

	widget.Position = entities.Position{X: float64(x), Y: float64(y)}
	widget.UpdatedAt = time.Now()

	s.invalidate(ctx, widget.BoardID)
	s.publish(ctx, ports.Event{Type: ports.EventWidgetUpdated, BoardID: widget.BoardID, Widget: widget})

	return nil
}

// UpdateContent replaces a widget's content string.
func (s *WidgetService) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	widget, err := s.widgetRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("widget not found: %w", err)
	}

	if err := s.widgetRepo.UpdateContent(ctx, id, content); err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}

	widget.Content = content
	widget.UpdatedAt = time.Now()

	s.invalidate(ctx, widget.BoardID)
	s.publish(ctx, ports.Event{Type: ports.EventWidgetUpdated, BoardID: widget.BoardID, Widget: widget})

	return nil
}

// UpdateSettings replaces a widget's settings bag verbatim.
func (s *WidgetService) UpdateSettings(ctx context.Context, id uuid.UUID, settings entities.Settings) error {
	widget, err := s.widgetRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("widget not found: %w", err)
	}

	if err := s.widgetRepo.UpdateSettings(ctx, id, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	widget.Settings = settings
	widget.Rotation = settings.Rotation()
	widget.UpdatedAt = time.Now()

	s.invalidate(ctx, widget.BoardID)
	s.publish(ctx, ports.Event{Type: ports.EventWidgetUpdated, BoardID: widget.BoardID, Widget: widget})

	return nil
}

// Rotate advances a widget's decorative angle one step and persists it
// through the settings path.
func (s *WidgetService) Rotate(ctx context.Context, id uuid.UUID) (*entities.Widget, error) {
	widget, err := s.widgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("widget not found: %w", err)
	}

	widget.Rotate()
	if err := s.UpdateSettings(ctx, id, widget.Settings); err != nil {
		return nil, err
	}

	return widget, nil
}

// BringToFront raises a widget above every other widget on its board.
func (s *WidgetService) BringToFront(ctx context.Context, id uuid.UUID) (*entities.Widget, error) {
	return s.restack(ctx, id, true)
}

// SendToBack lowers a widget below every other widget on its board.
func (s *WidgetService) SendToBack(ctx context.Context, id uuid.UUID) (*entities.Widget, error) {
	return s.restack(ctx, id, false)
}

func (s *WidgetService) restack(ctx context.Context, id uuid.UUID, front bool) (*entities.Widget, error) {
	widget, err := s.widgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("widget not found: %w", err)
	}

	maxZ, minZ, err := s.zIndexRange(ctx, widget.BoardID)
	if err != nil {
		return nil, err
	}

	if front {
		widget.Settings.SetZIndex(maxZ + 1)
	} else {
		widget.Settings.SetZIndex(minZ - 1)
	}

	if err := s.UpdateSettings(ctx, id, widget.Settings); err != nil {
		return nil, err
	}

	return widget, nil
}

// DeleteWidget removes a widget and signals subscribers.
func (s *WidgetService) DeleteWidget(ctx context.Context, id uuid.UUID) error {
	widget, err := s.widgetRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("widget not found: %w", err)
	}

	if err := s.widgetRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete widget: %w", err)
	}

	s.invalidate(ctx, widget.BoardID)
	s.publish(ctx, ports.Event{Type: ports.EventWidgetDeleted, BoardID: widget.BoardID, WidgetID: id})

	s.logger.Info("Widget deleted successfully", "widget_id", id, "board_id", widget.BoardID)

	return nil
}

// zIndexRange scans the board's current widget set for the stacking
// extremes; an empty board yields (0, 0).
func (s *WidgetService) zIndexRange(ctx context.Context, boardID uuid.UUID) (maxZ, minZ float64, err error) {
	list, err := s.ListWidgets(ctx, boardID)
	if err != nil {
		return 0, 0, err
	}
	maxZ, minZ = zRange(list)
	return maxZ, minZ, nil
}

func zRange(list []*entities.Widget) (maxZ, minZ float64) {
	for i, w := range list {
		z := w.ZIndex()
		if i == 0 {
			maxZ, minZ = z, z
			continue
		}
		if z > maxZ {
			maxZ = z
		}
		if z < minZ {
			minZ = z
		}
	}
	return maxZ, minZ
}

func (s *WidgetService) withinEnvelope(x, y float64) bool {
	if x < 0 || y < 0 {
		return false
	}
	b := s.Bounds()
	if !b.Valid() {
		return true
	}
	return x <= b.Width && y <= b.Height
}

func (s *WidgetService) invalidate(ctx context.Context, boardID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, boardID)
	}
}

// publish fans a change event out; delivery failures are logged, never
// surfaced, so a broken broker cannot fail a committed mutation.
func (s *WidgetService) publish(ctx context.Context, event ports.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish board event", "error", err, "board_id", event.BoardID, "event", event.Type)
	}
}
