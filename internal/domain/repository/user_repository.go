package repository

import (
	"context"
	"time"

	"github.com/jhoicas/storefront-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las búsquedas devuelven (nil, nil) cuando no hay registro.
type UserRepository interface {
	// Create falla con domain.ErrEmailAlreadyExists si el email ya existe (constraint única del store).
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Count(ctx context.Context) (int, error)
}
