package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/corkboard/core/internal/application/services"
	"github.com/corkboard/core/internal/infrastructure/logger"
	"github.com/corkboard/core/internal/ports"
)

// EventsHandler streams a board's widget change events over SSE.
type EventsHandler struct {
	subscriber   ports.Subscriber
	boardService *services.BoardService
	logger       *logger.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(subscriber ports.Subscriber, boardService *services.BoardService, logger *logger.Logger) *EventsHandler {
	return &EventsHandler{
		subscriber:   subscriber,
		boardService: boardService,
		logger:       logger,
	}
}

// Stream subscribes the caller to one board's event stream. The
// subscription lasts until the client disconnects; disconnect tears the
// subscription down so board switches never leak listeners.
func (h *EventsHandler) Stream(c echo.Context) error {
	boardID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if _, err := h.boardService.GetBoard(c.Request().Context(), boardID, getUserIDFromContext(c)); err != nil {
		return domainError(err)
	}

	ctx := c.Request().Context()
	events, cancel, err := h.subscriber.Subscribe(ctx, boardID)
	if err != nil {
		h.logger.Error("Event subscription failed", "error", err, "board_id", boardID)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Event stream unavailable")
	}
	defer cancel()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}

			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("Event encode failed", "error", err, "board_id", boardID)
				continue
			}

			if _, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
