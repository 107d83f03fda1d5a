package repository

import (
	"context"

	"github.com/jhoicas/storehub-api/internal/domain/entity"
)

// RoleRepository almacenamiento del catálogo de roles (lectura por clave e inserción idempotente).
type RoleRepository interface {
	// EnsureRoles inserta los roles que falten; no falla ni duplica si ya existen.
	EnsureRoles(ctx context.Context, roles []entity.Role) error
	List(ctx context.Context) ([]entity.Role, error)
	GetByNames(ctx context.Context, names []string) ([]entity.Role, error)
}
