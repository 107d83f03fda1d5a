package repository

import (
	"context"

	"github.com/jhoicas/storehub-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// FindByUID devuelve (nil, nil) si no existe.
type UserRepository interface {
	FindByUID(ctx context.Context, uid string) (*entity.User, error)
	// Create persiste el usuario y sus roles de forma atómica; completa ID y timestamps.
	// Devuelve domain.ErrDuplicate si el uid ya existe.
	Create(ctx context.Context, user *entity.User) error
	SetRoles(ctx context.Context, userID int64, roles []entity.Role) error
	SetActive(ctx context.Context, userID int64, active bool) error
	MarkTutorialPassed(ctx context.Context, userID int64) error
	UpdateProfile(ctx context.Context, userID int64, profile entity.UserProfile) error
	BindStore(ctx context.Context, userID, storeID int64) error
	Query(ctx context.Context, q entity.UserListQuery, pageSize, pageNum int) (*entity.UserPage, error)
}
