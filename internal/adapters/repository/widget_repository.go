package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/corkboard/core/internal/domain/entities"
	"github.com/corkboard/core/internal/ports"
)

// WidgetRepositoryImpl implements the WidgetRepository interface
type WidgetRepositoryImpl struct {
	db *sqlx.DB
}

// NewWidgetRepository creates a new widget repository
func NewWidgetRepository(db *sqlx.DB) ports.WidgetRepository {
	return &WidgetRepositoryImpl{db: db}
}

// widgetRow is the scan target; coordinates are integer columns and the
// settings bag is a jsonb blob.
type widgetRow struct {
	ID        uuid.UUID       `db:"id"`
	BoardID   uuid.UUID       `db:"board_id"`
	Type      string          `db:"type"`
	Content   string          `db:"content"`
	X         int             `db:"x"`
	Y         int             `db:"y"`
	Width     sql.NullFloat64 `db:"width"`
	Height    sql.NullFloat64 `db:"height"`
	Settings  []byte          `db:"settings"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r widgetRow) toEntity() (*entities.Widget, error) {
	w := &entities.Widget{
		ID:        r.ID,
		BoardID:   r.BoardID,
		Type:      entities.WidgetType(r.Type),
		Content:   r.Content,
		Position:  entities.Position{X: float64(r.X), Y: float64(r.Y)},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Width.Valid && r.Height.Valid {
		w.Size = &entities.Size{Width: r.Width.Float64, Height: r.Height.Float64}
	}
	if len(r.Settings) > 0 {
		if err := json.Unmarshal(r.Settings, &w.Settings); err != nil {
			return nil, fmt.Errorf("decode widget settings: %w", err)
		}
	}
	w.Rotation = w.Settings.Rotation()
	return w, nil
}

func (r *WidgetRepositoryImpl) Create(ctx context.Context, widget *entities.Widget) error {
	if widget.ID == uuid.Nil {
		widget.ID = uuid.New()
	}

	settings, err := json.Marshal(widget.Settings)
	if err != nil {
		return fmt.Errorf("encode widget settings: %w", err)
	}

	var width, height sql.NullFloat64
	if widget.Size != nil {
		width = sql.NullFloat64{Float64: widget.Size.Width, Valid: true}
		height = sql.NullFloat64{Float64: widget.Size.Height, Valid: true}
	}

	query := `
		INSERT INTO widgets (id, board_id, type, content, x, y, width, height, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		widget.ID, widget.BoardID, widget.Type, widget.Content,
		int(math.Round(widget.Position.X)), int(math.Round(widget.Position.Y)),
		width, height, settings,
	).Scan(&widget.CreatedAt, &widget.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create widget: %w", err)
	}

	return nil
}

func (r *WidgetRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Widget, error) {
	query := `
		SELECT id, board_id, type, content, x, y, width, height, settings, created_at, updated_at
		FROM widgets
		WHERE id = $1`

	var row widgetRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrWidgetNotFound
		}
		return nil, fmt.Errorf("get widget by id: %w", err)
	}

	return row.toEntity()
}

func (r *WidgetRepositoryImpl) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*entities.Widget, error) {
	query := `
		SELECT id, board_id, type, content, x, y, width, height, settings, created_at, updated_at
		FROM widgets
		WHERE board_id = $1
		ORDER BY created_at ASC`

	var rows []widgetRow
	err := r.db.SelectContext(ctx, &rows, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("list widgets: %w", err)
	}

	widgets := make([]*entities.Widget, 0, len(rows))
	for _, row := range rows {
		w, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, w)
	}

	return widgets, nil
}

func (r *WidgetRepositoryImpl) UpdatePosition(ctx context.Context, id uuid.UUID, x, y int) error {
	query := `
		UPDATE widgets
		SET x = $2, y = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, x, y)
	if err != nil {
		return fmt.Errorf("update widget position: %w", err)
	}

	return requireRow(result, entities.ErrWidgetNotFound)
}

func (r *WidgetRepositoryImpl) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	query := `
		UPDATE widgets
		SET content = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, content)
	if err != nil {
		return fmt.Errorf("update widget content: %w", err)
	}

	return requireRow(result, entities.ErrWidgetNotFound)
}

func (r *WidgetRepositoryImpl) UpdateSettings(ctx context.Context, id uuid.UUID, settings entities.Settings) error {
	encoded, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode widget settings: %w", err)
	}

	query := `
		UPDATE widgets
		SET settings = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, encoded)
	if err != nil {
		return fmt.Errorf("update widget settings: %w", err)
	}

	return requireRow(result, entities.ErrWidgetNotFound)
}

func (r *WidgetRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM widgets WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete widget: %w", err)
	}

	return requireRow(result, entities.ErrWidgetNotFound)
}

// requireRow converts a zero-row update into the entity's not-found error.
func requireRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
