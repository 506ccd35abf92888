package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/infrastructure/logger"
	"github.com/corkboard/core/internal/ports"
)

// BoardService handles board-level operations
type BoardService struct {
	boardRepo ports.BoardRepository
	userRepo  ports.UserRepository
	logger    *logger.Logger
}

// NewBoardService creates a new board service
func NewBoardService(boardRepo ports.BoardRepository, userRepo ports.UserRepository, logger *logger.Logger) *BoardService {
	return &BoardService{
		boardRepo: boardRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// CreateBoard creates a new board owned by the given user
func (s *BoardService) CreateBoard(ctx context.Context, ownerID uuid.UUID, req ports.CreateBoardRequest) (*entities.Board, error) {
	board := &entities.Board{
		ID:        uuid.New(),
		Name:      req.Name,
		OwnerID:   ownerID,
		IsPublic:  req.IsPublic,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.boardRepo.Create(ctx, board); err != nil {
		return nil, fmt.Errorf("failed to create board: %w", err)
	}

	s.logger.Info("Board created successfully", "board_id", board.ID, "owner_id", ownerID)

	return board, nil
}

// GetBoard retrieves a board, enforcing the visibility rules: owners and
// admins always see their boards, everyone else only public ones.
func (s *BoardService) GetBoard(ctx context.Context, boardID, userID uuid.UUID) (*entities.Board, error) {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("board not found: %w", err)
	}

	if board.IsPublic {
		return board, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, entities.ErrUnauthorized
	}
	if !user.CanViewBoard(board) {
		return nil, entities.ErrUnauthorized
	}

	return board, nil
}

// UpdateBoard updates a board's name or visibility
func (s *BoardService) UpdateBoard(ctx context.Context, boardID, userID uuid.UUID, req ports.UpdateBoardRequest) (*entities.Board, error) {
	board, err := s.authorizeEdit(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		board.Name = *req.Name
	}
	if req.IsPublic != nil {
		board.IsPublic = *req.IsPublic
	}
	board.UpdatedAt = time.Now()

	if err := s.boardRepo.Update(ctx, board); err != nil {
		return nil, fmt.Errorf("failed to update board: %w", err)
	}

	s.logger.Info("Board updated successfully", "board_id", board.ID)

	return board, nil
}

// DeleteBoard deletes a board
func (s *BoardService) DeleteBoard(ctx context.Context, boardID, userID uuid.UUID) error {
	if _, err := s.authorizeEdit(ctx, boardID, userID); err != nil {
		return err
	}

	if err := s.boardRepo.Delete(ctx, boardID); err != nil {
		return fmt.Errorf("failed to delete board: %w", err)
	}

	s.logger.Info("Board deleted successfully", "board_id", boardID)

	return nil
}

// ListBoards retrieves all boards owned by the user
func (s *BoardService) ListBoards(ctx context.Context, ownerID uuid.UUID) ([]*entities.Board, error) {
	boards, err := s.boardRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", err)
	}

	return boards, nil
}

// ListPublicBoards retrieves publicly shared boards
func (s *BoardService) ListPublicBoards(ctx context.Context, limit, offset int) ([]*entities.Board, error) {
	if limit <= 0 {
		limit = 20
	}
	boards, err := s.boardRepo.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list public boards: %w", err)
	}

	return boards, nil
}

// AuthorizeEdit verifies the user may mutate the board's widgets.
func (s *BoardService) AuthorizeEdit(ctx context.Context, boardID, userID uuid.UUID) error {
	_, err := s.authorizeEdit(ctx, boardID, userID)
	return err
}

func (s *BoardService) authorizeEdit(ctx context.Context, boardID, userID uuid.UUID) (*entities.Board, error) {
	board, err := s.boardRepo.GetByID(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("board not found: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, entities.ErrUnauthorized
	}
	if !user.CanEditBoard(board) {
		return nil, entities.ErrUnauthorized
	}

	return board, nil
}
