package usecase

import (
	"github.com/jhoicas/storehub-api/internal/application/dto"
	"github.com/jhoicas/storehub-api/internal/application/ports"
	"github.com/jhoicas/storehub-api/internal/domain/entity"
)

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	roles := u.RoleNames()
	return &dto.UserResponse{
		UID:            u.UID,
		Email:          u.Email,
		FullName:       u.FullName,
		Phone:          u.Phone,
		Address1:       u.Address1,
		Address2:       u.Address2,
		Country:        u.Country,
		Currency:       u.Currency,
		IsActive:       u.IsActive,
		IsPassTutorial: u.IsPassTutorial,
		StoreCode:      u.StoreCode,
		Roles:          roles,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func identityToMeta(id *ports.ExternalIdentity) dto.UserMetaResponse {
	return dto.UserMetaResponse{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		Disabled:    id.Disabled,
	}
}

func entityToStoreResponse(s *entity.Store) *dto.StoreResponse {
	if s == nil {
		return nil
	}
	return &dto.StoreResponse{
		StoreCode:    s.StoreCode,
		Name:         s.Name,
		Description:  s.Description,
		CurrencyCode: s.CurrencyCode,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
