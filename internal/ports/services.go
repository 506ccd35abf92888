package ports

import (
	"github.com/google/uuid"

	"github.com/corkboard/core/internal/domain/entities"
)

// Request types shared between the HTTP adapters and the application services.

type CreateBoardRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	IsPublic bool   `json:"is_public"`
}

type UpdateBoardRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	IsPublic *bool   `json:"is_public"`
}

type CreateWidgetRequest struct {
	Type     entities.WidgetType `json:"type" validate:"required"`
	Content  string              `json:"content"`
	X        float64             `json:"x"`
	Y        float64             `json:"y"`
	Settings entities.Settings   `json:"settings"`
}

type UpdateContentRequest struct {
	Content string `json:"content"`
}

type UpdateSettingsRequest struct {
	Settings entities.Settings `json:"settings" validate:"required"`
}

type DragStartRequest struct {
	WidgetID uuid.UUID `json:"widget_id" validate:"required"`
}

type DragMoveRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *entities.User `json:"user"`
}
