package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
	"github.com/jhoicas/storehub-api/internal/domain/repository"
)

// RoleService siembra y consulta el catálogo de roles persistido.
type RoleService struct {
	repo repository.RoleRepository
}

// NewRoleService construye el servicio.
func NewRoleService(repo repository.RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

// Seed inserta los roles que falten y verifica que el catálogo completo quede persistido.
// Es idempotente; un error aquí debe abortar el arranque.
func (s *RoleService) Seed(ctx context.Context) error {
	if err := s.repo.EnsureRoles(ctx, authz.AllRoles()); err != nil {
		return fmt.Errorf("sembrar roles: %w", err)
	}
	stored, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("listar roles: %w", err)
	}
	byName := make(map[string]int, len(stored))
	for _, r := range stored {
		byName[r.Name] = r.ID
	}
	for _, want := range authz.AllRoles() {
		id, ok := byName[want.Name]
		if !ok {
			return fmt.Errorf("rol %q ausente tras la siembra", want.Name)
		}
		if id != want.ID {
			return fmt.Errorf("rol %q con id %d, se esperaba %d", want.Name, id, want.ID)
		}
	}
	return nil
}

// Catalog devuelve los roles persistidos.
func (s *RoleService) Catalog(ctx context.Context) ([]entity.Role, error) {
	return s.repo.List(ctx)
}
