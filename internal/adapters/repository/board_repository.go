package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/infrastructure/database"
	"github.com/corkboard/core/internal/ports"
)

// BoardRepositoryImpl implements the BoardRepository interface
type BoardRepositoryImpl struct {
	db   *sqlx.DB
	pool *database.DB
}

// NewBoardRepository creates a new board repository
func NewBoardRepository(db *database.DB) ports.BoardRepository {
	return &BoardRepositoryImpl{db: db.DB, pool: db}
}

func (r *BoardRepositoryImpl) Create(ctx context.Context, board *entities.Board) error {
	if board.ID == uuid.Nil {
		board.ID = uuid.New()
	}

	query := `
		INSERT INTO boards (id, name, owner_id, is_public)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		board.ID, board.Name, board.OwnerID, board.IsPublic,
	).Scan(&board.CreatedAt, &board.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}

	return nil
}

func (r *BoardRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Board, error) {
	query := `
		SELECT id, name, owner_id, is_public, created_at, updated_at, deleted_at
		FROM boards
		WHERE id = $1 AND deleted_at IS NULL`

	var board entities.Board
	err := r.db.GetContext(ctx, &board, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrBoardNotFound
		}
		return nil, fmt.Errorf("get board by id: %w", err)
	}

	return &board, nil
}

func (r *BoardRepositoryImpl) Update(ctx context.Context, board *entities.Board) error {
	query := `
		UPDATE boards
		SET name = $2, is_public = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		board.ID, board.Name, board.IsPublic,
	).Scan(&board.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return entities.ErrBoardNotFound
		}
		return fmt.Errorf("update board: %w", err)
	}

	return nil
}

// Delete soft-deletes the board and removes its widgets in one
// transaction. Widgets of a soft-deleted board are unreachable, so they
// are dropped rather than kept.
func (r *BoardRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.pool.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE boards
			SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1 AND deleted_at IS NULL`

		result, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return fmt.Errorf("delete board: %w", err)
		}
		if err := requireRow(result, entities.ErrBoardNotFound); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM widgets WHERE board_id = $1`, id); err != nil {
			return fmt.Errorf("delete board widgets: %w", err)
		}
		return nil
	})
}

func (r *BoardRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Board, error) {
	query := `
		SELECT id, name, owner_id, is_public, created_at, updated_at, deleted_at
		FROM boards
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	var boards []*entities.Board
	err := r.db.SelectContext(ctx, &boards, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list boards by owner: %w", err)
	}

	return boards, nil
}

func (r *BoardRepositoryImpl) ListPublic(ctx context.Context, limit, offset int) ([]*entities.Board, error) {
	query := `
		SELECT id, name, owner_id, is_public, created_at, updated_at, deleted_at
		FROM boards
		WHERE is_public = true AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	var boards []*entities.Board
	err := r.db.SelectContext(ctx, &boards, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list public boards: %w", err)
	}

	return boards, nil
}
