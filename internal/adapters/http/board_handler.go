package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/corkboard/core/internal/application/services"
	"github.com/corkboard/core/internal/infrastructure/logger"
	"github.com/corkboard/core/internal/ports"
)

// BoardHandler handles board-related requests
type BoardHandler struct {
	boardService *services.BoardService
	logger       *logger.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(boardService *services.BoardService, logger *logger.Logger) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		logger:       logger,
	}
}

// CreateBoard handles board creation
func (h *BoardHandler) CreateBoard(c echo.Context) error {
	var req ports.CreateBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	board, err := h.boardService.CreateBoard(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		h.logger.Error("Create board failed", "error", err)
		return domainError(err)
	}

	return c.JSON(http.StatusCreated, board)
}

// GetBoard handles getting a board by ID
func (h *BoardHandler) GetBoard(c echo.Context) error {
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	board, err := h.boardService.GetBoard(c.Request().Context(), boardID, getUserIDFromContext(c))
	if err != nil {
		h.logger.Error("Get board failed", "error", err, "board_id", boardID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, board)
}

// UpdateBoard handles board updates
func (h *BoardHandler) UpdateBoard(c echo.Context) error {
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	board, err := h.boardService.UpdateBoard(c.Request().Context(), boardID, getUserIDFromContext(c), req)
	if err != nil {
		h.logger.Error("Update board failed", "error", err, "board_id", boardID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, board)
}

// DeleteBoard handles board deletion
func (h *BoardHandler) DeleteBoard(c echo.Context) error {
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.boardService.DeleteBoard(c.Request().Context(), boardID, getUserIDFromContext(c)); err != nil {
		h.logger.Error("Delete board failed", "error", err, "board_id", boardID)
		return domainError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Board deleted"})
}

// ListBoards handles listing the caller's boards
func (h *BoardHandler) ListBoards(c echo.Context) error {
	boards, err := h.boardService.ListBoards(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		h.logger.Error("List boards failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve boards")
	}

	return c.JSON(http.StatusOK, boards)
}

// ListPublicBoards handles listing public boards
func (h *BoardHandler) ListPublicBoards(c echo.Context) error {
	limit := 20
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid limit parameter")
		}
		limit = parsed
	}

	offset := 0
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid offset parameter")
		}
		offset = parsed
	}

	boards, err := h.boardService.ListPublicBoards(c.Request().Context(), limit, offset)
	if err != nil {
		h.logger.Error("List public boards failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve boards")
	}

	return c.JSON(http.StatusOK, boards)
}
