package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/corkboard/core/internal/domain/entities"
)

// WidgetRepository defines the persistence contract for widget records.
// All coordinate values crossing this boundary are integers.
type WidgetRepository interface {
	Create(ctx context.Context, widget *entities.Widget) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Widget, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*entities.Widget, error)
	UpdatePosition(ctx context.Context, id uuid.UUID, x, y int) error
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error
	// UpdateSettings replaces the settings bag verbatim (full-replace semantics).
	UpdateSettings(ctx context.Context, id uuid.UUID, settings entities.Settings) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BoardRepository defines the persistence contract for boards.
type BoardRepository interface {
	Create(ctx context.Context, board *entities.Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Board, error)
	Update(ctx context.Context, board *entities.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entities.Board, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*entities.Board, error)
}

// UserRepository defines the persistence contract for users.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthRepository defines the persistence contract for refresh tokens.
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredTokens(ctx context.Context) error
}

// EventType names a widget change pushed to subscribers.
type EventType string

const (
	EventWidgetInserted EventType = "widget.inserted"
	EventWidgetUpdated  EventType = "widget.updated"
	EventWidgetDeleted  EventType = "widget.deleted"
)

// Event is one widget change notification scoped to a board.
type Event struct {
	Type    EventType        `json:"type"`
	BoardID uuid.UUID        `json:"board_id"`
	Widget  *entities.Widget `json:"widget,omitempty"`
	// WidgetID is set on deletes, where the record no longer exists.
	WidgetID uuid.UUID `json:"widget_id,omitempty"`
}

// Publisher fans one board's widget changes out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscriber delivers a board's widget change stream. The returned cancel
// function must be called on board switch or unmount.
type Subscriber interface {
	Subscribe(ctx context.Context, boardID uuid.UUID) (<-chan Event, func(), error)
}

// BoardCache fronts ListByBoard with a snapshot of the board's widget set.
type BoardCache interface {
	GetWidgets(ctx context.Context, boardID uuid.UUID) ([]*entities.Widget, bool)
	SetWidgets(ctx context.Context, boardID uuid.UUID, widgets []*entities.Widget)
	Invalidate(ctx context.Context, boardID uuid.UUID)
}

// FileStore persists uploaded widget assets (images) and resolves their
// public URLs.
type FileStore interface {
	Save(ctx context.Context, name string, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}

// RefreshToken represents a refresh token record.
type RefreshToken struct {
	ID        int        `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	TokenHash string     `json:"token_hash" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at" db:"revoked_at"`
}

// IsExpired checks if the refresh token is expired.
func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsRevoked checks if the refresh token is revoked.
func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

// IsValid checks if the refresh token is valid.
func (rt *RefreshToken) IsValid() bool {
	return !rt.IsExpired() && !rt.IsRevoked()
}
