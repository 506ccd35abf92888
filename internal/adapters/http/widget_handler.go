package http

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/corkboard/core/internal/application/services"
	"github.com/corkboard/core/internal/domain/layout"
	"github.com/corkboard/core/internal/infrastructure/logger"
	"github.com/corkboard/core/internal/ports"
)

// WidgetHandler handles widget-related requests
type WidgetHandler struct {
	widgetService *services.WidgetService
	boardService  *services.BoardService
	logger        *logger.Logger
}

// NewWidgetHandler creates a new widget handler
func NewWidgetHandler(widgetService *services.WidgetService, boardService *services.BoardService, logger *logger.Logger) *WidgetHandler {
	return &WidgetHandler{
		widgetService: widgetService,
		boardService:  boardService,
		logger:        logger,
	}
}

// authorizeWidgetEdit resolves a widget and checks the caller may mutate
// its board.
func (h *WidgetHandler) authorizeWidgetEdit(c echo.Context, widgetID uuid.UUID) error {
	widget, err := h.widgetService.GetWidget(c.Request().Context(), widgetID)
	if err != nil {
		return err
	}
	return h.boardService.AuthorizeEdit(c.Request().Context(), widget.BoardID, getUserIDFromContext(c))
}

// ListWidgets handles listing a board's widgets
func (h *WidgetHandler) ListWidgets(c echo.Context) error {
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.boardService.GetBoard(c.Request().Context(), boardID, getUserIDFromContext(c)); err != nil {
		return domainError(err)
	}

	widgets, err := h.widgetService.ListWidgets(c.Request().Context(), boardID)
	if err != nil {
		h.logger.Error("List widgets failed", "error", err, "board_id", boardID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, widgets)
}

// GetView handles the windowed board render for one viewport. Query
// params scroll_top and height describe the visible strip.
func (h *WidgetHandler) GetView(c echo.Context) error {
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.boardService.GetBoard(c.Request().Context(), boardID, getUserIDFromContext(c)); err != nil {
		return domainError(err)
	}

	vp := layout.Viewport{}
	if v := c.QueryParam("scroll_top"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid scroll_top parameter")
		}
		vp.ScrollTop = parsed
	}
	if v := c.QueryParam("height"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid height parameter")
		}
		vp.Height = parsed
	}

	view, err := h.widgetService.View(c.Request().Context(), boardID, vp)
	if err != nil {
		h.logger.Error("Board view failed", "error", err, "board_id", boardID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, view)
}

// CreateWidget handles widget creation on a board
func (h *WidgetHandler) CreateWidget(c echo.Context) error {
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.CreateWidgetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.boardService.AuthorizeEdit(c.Request().Context(), boardID, getUserIDFromContext(c)); err != nil {
		return domainError(err)
	}

	widget, err := h.widgetService.AddWidget(c.Request().Context(), boardID, req)
	if err != nil {
		h.logger.Error("Create widget failed", "error", err, "board_id", boardID)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, widget)
}

// GetWidget handles getting a widget by ID
func (h *WidgetHandler) GetWidget(c echo.Context) error {
	widgetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	widget, err := h.widgetService.GetWidget(c.Request().Context(), widgetID)
	if err != nil {
		return domainError(err)
	}

	if _, err := h.boardService.GetBoard(c.Request().Context(), widget.BoardID, getUserIDFromContext(c)); err != nil {
		return domainError(err)
	}

	return c.JSON(http.StatusOK, widget)
}

// UpdatePosition handles direct position writes (integer coordinates)
func (h *WidgetHandler) UpdatePosition(c echo.Context) error {
	widgetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdatePositionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.authorizeWidgetEdit(c, widgetID); err != nil {
		return domainError(err)
	}

	if err := h.widgetService.UpdatePosition(c.Request().Context(), widgetID, req.X, req.Y); err != nil {
		h.logger.Error("Update position failed", "error", err, "widget_id", widgetID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Position updated"})
}

// UpdateContent handles content updates
func (h *WidgetHandler) UpdateContent(c echo.Context) error {
	widgetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateContentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := h.authorizeWidgetEdit(c, widgetID); err != nil {
		return domainError(err)
	}

	if err := h.widgetService.UpdateContent(c.Request().Context(), widgetID, req.Content); err != nil {
		h.logger.Error("Update content failed", "error", err, "widget_id", widgetID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Content updated"})
}

// UpdateSettings handles full-replace settings updates
func (h *WidgetHandler) UpdateSettings(c echo.Context) error {
	widgetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authorizeWidgetEdit(c, widgetID); err != nil {
		return domainError(err)
	}

	if err := h.widgetService.UpdateSettings(c.Request().Context(), widgetID, req.Settings); err != nil {
		h.logger.Error("Update settings failed", "error", err, "widget_id", widgetID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Settings updated"})
}

// Rotate advances the widget's decorative angle one step
func (h *WidgetHandler) Rotate(c echo.Context) error {
	widgetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.authorizeWidgetEdit(c, widgetID); err != nil {
		return domainError(err)
	}

	widget, err := h.widgetService.Rotate(c.Request().Context(), widgetID)
	if err != nil {
		h.logger.Error("Rotate widget failed", "error", err, "widget_id", widgetID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, widget)
}

// BringToFront raises the widget above every other widget on its board
func (h *WidgetHandler) BringToFront(c echo.Context) error {
	widgetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.authorizeWidgetEdit(c, widgetID); err != nil {
		return domainError(err)
	}

	widget, err := h.widgetService.BringToFront(c.Request().Context(), widgetID)
	if err != nil {
		h.logger.Error("Bring to front failed", "error", err, "widget_id", widgetID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, widget)
}

// SendToBack lowers the widget below every other widget on its board
func (h *WidgetHandler) SendToBack(c echo.Context) error {
	widgetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.authorizeWidgetEdit(c, widgetID); err != nil {
		return domainError(err)
	}

	widget, err := h.widgetService.SendToBack(c.Request().Context(), widgetID)
	if err != nil {
		h.logger.Error("Send to back failed", "error", err, "widget_id", widgetID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, widget)
}

// DeleteWidget handles widget deletion
func (h *WidgetHandler) DeleteWidget(c echo.Context) error {
	widgetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.authorizeWidgetEdit(c, widgetID); err != nil {
		return domainError(err)
	}

	if err := h.widgetService.DeleteWidget(c.Request().Context(), widgetID); err != nil {
		h.logger.Error("Delete widget failed", "error", err, "widget_id", widgetID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Widget deleted"})
}

// UpdatePositionRequest carries the integer target coordinates.
type UpdatePositionRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}
