package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corkboard/core/internal/application/services"
	"github.com/corkboard/core/internal/infrastructure/logger"
	"github.com/corkboard/core/internal/ports"
)

// SessionHandler handles per-user board interaction state: selection and
// the drag lifecycle.
type SessionHandler struct {
	sessionService *services.SessionService
	widgetService  *services.WidgetService
	boardService   *services.BoardService
	logger         *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService *services.SessionService, widgetService *services.WidgetService, boardService *services.BoardService, logger *logger.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		widgetService:  widgetService,
		boardService:   boardService,
		logger:         logger,
	}
}

// authorizeWidgetEdit resolves a widget and checks the caller may mutate
// its board.
func (h *SessionHandler) authorizeWidgetEdit(c echo.Context, req ports.DragStartRequest) error {
	widget, err := h.widgetService.GetWidget(c.Request().Context(), req.WidgetID)
	if err != nil {
		return err
	}
	return h.boardService.AuthorizeEdit(c.Request().Context(), widget.BoardID, getUserIDFromContext(c))
}

// Select marks one widget as the caller's current selection
func (h *SessionHandler) Select(c echo.Context) error {
	var req ports.DragStartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authorizeWidgetEdit(c, req); err != nil {
		return domainError(err)
	}

	h.sessionService.Select(getUserIDFromContext(c), req.WidgetID)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Widget selected"})
}

// ClearSelection drops the caller's selection
func (h *SessionHandler) ClearSelection(c echo.Context) error {
	h.sessionService.ClearSelection(getUserIDFromContext(c))
	return c.JSON(http.StatusOK, MessageResponse{Message: "Selection cleared"})
}

// RotateSelected rotates the selected widget one step. With nothing
// selected the call is a no-op.
func (h *SessionHandler) RotateSelected(c echo.Context) error {
	widget, err := h.sessionService.RotateSelected(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		h.logger.Error("Rotate selected failed", "error", err)
		return domainError(err)
	}
	if widget == nil {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Nothing selected"})
	}

	return c.JSON(http.StatusOK, widget)
}

// BringSelectedToFront raises the selected widget. No-op when nothing is
// selected.
func (h *SessionHandler) BringSelectedToFront(c echo.Context) error {
	widget, err := h.sessionService.BringSelectedToFront(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		h.logger.Error("Bring selected to front failed", "error", err)
		return domainError(err)
	}
	if widget == nil {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Nothing selected"})
	}

	return c.JSON(http.StatusOK, widget)
}

// SendSelectedToBack lowers the selected widget. No-op when nothing is
// selected.
func (h *SessionHandler) SendSelectedToBack(c echo.Context) error {
	widget, err := h.sessionService.SendSelectedToBack(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		h.logger.Error("Send selected to back failed", "error", err)
		return domainError(err)
	}
	if widget == nil {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Nothing selected"})
	}

	return c.JSON(http.StatusOK, widget)
}

// DeleteSelected removes the selected widget and clears the selection.
// No-op when nothing is selected.
func (h *SessionHandler) DeleteSelected(c echo.Context) error {
	if err := h.sessionService.DeleteSelected(c.Request().Context(), getUserIDFromContext(c)); err != nil {
		h.logger.Error("Delete selected failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Selection handled"})
}

// StartDrag opens the caller's drag slot on one widget
func (h *SessionHandler) StartDrag(c echo.Context) error {
	var req ports.DragStartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authorizeWidgetEdit(c, req); err != nil {
		return domainError(err)
	}

	widget, err := h.sessionService.StartDrag(c.Request().Context(), getUserIDFromContext(c), req.WidgetID)
	if err != nil {
		h.logger.Error("Start drag failed", "error", err, "widget_id", req.WidgetID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, widget)
}

// MoveDrag records the latest cumulative pointer delta and returns the
// clamped live position
func (h *SessionHandler) MoveDrag(c echo.Context) error {
	var req ports.DragMoveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	position, err := h.sessionService.MoveDrag(getUserIDFromContext(c), req.DX, req.DY)
	if err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, position)
}

// EndDrag closes the drag slot and commits the final position when it
// moved. A zero-delta drag commits nothing.
func (h *SessionHandler) EndDrag(c echo.Context) error {
	position, err := h.sessionService.EndDrag(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		h.logger.Error("End drag failed", "error", err)
		return domainError(err)
	}
	if position == nil {
		return c.JSON(http.StatusOK, MessageResponse{Message: "Drag ended without movement"})
	}

	return c.JSON(http.StatusOK, position)
}
