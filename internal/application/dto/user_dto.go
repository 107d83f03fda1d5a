package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/storehub-api/internal/domain"
)

// UserResponse salida de un usuario interno.
type UserResponse struct {
	UID            string    `json:"uid"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullname"`
	Phone          string    `json:"phone"`
	Address1       string    `json:"address1"`
	Address2       string    `json:"address2"`
	Country        string    `json:"country"`
	Currency       string    `json:"currency"`
	IsActive       bool      `json:"is_active"`
	IsPassTutorial bool      `json:"is_pass_tutorial"`
	StoreCode      string    `json:"store_code"`
	Roles          []string  `json:"roles"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserMetaResponse datos del usuario en el proveedor de identidad.
type UserMetaResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Disabled    bool   `json:"disabled"`
}

// UserDetailResponse salida de GET /user/:uid. UserData es nil si el usuario no existe localmente.
type UserDetailResponse struct {
	UserMeta UserMetaResponse `json:"user_meta"`
	UserData *UserResponse    `json:"user_data"`
}

// SyncUserResponse salida de la sincronización de un usuario desde el proveedor.
type SyncUserResponse struct {
	User       UserMetaResponse `json:"user"`
	ExtendInfo *UserResponse    `json:"extend_info"`
}

// UpdateUserInfoRequest entrada para actualizar el perfil.
type UpdateUserInfoRequest struct {
	FullName string `json:"fullname"`
	Phone    string `json:"phone"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	Country  string `json:"country"`  // ISO-3166 alpha-2
	Currency string `json:"currency"` // ISO-4217
}

// Validate revisa forma y largos; país y moneda se validan en el caso de uso.
func (r *UpdateUserInfoRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	if r.FullName == "" || len(r.FullName) > 100 {
		return fmt.Errorf("%w: fullname requerido (máx. 100)", domain.ErrInvalidParams)
	}
	for name, v := range map[string]string{"phone": r.Phone, "address1": r.Address1, "address2": r.Address2} {
		if len(v) > 100 {
			return fmt.Errorf("%w: %s demasiado largo", domain.ErrInvalidParams, name)
		}
	}
	if r.Country == "" || r.Currency == "" {
		return fmt.Errorf("%w: country y currency son requeridos", domain.ErrInvalidParams)
	}
	return nil
}

// CreateStaffRequest entrada para crear un usuario de staff de una tienda.
type CreateStaffRequest struct {
	Email    string   `json:"email"`
	FullName string   `json:"fullname"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// Validate revisa los campos obligatorios.
func (r *CreateStaffRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	switch {
	case r.Email == "" || !strings.Contains(r.Email, "@"):
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidParams)
	case r.FullName == "":
		return fmt.Errorf("%w: fullname requerido", domain.ErrInvalidParams)
	case len(r.Password) < 6:
		return fmt.Errorf("%w: password de al menos 6 caracteres", domain.ErrInvalidParams)
	case len(r.Roles) == 0:
		return fmt.Errorf("%w: roles requeridos", domain.ErrInvalidParams)
	}
	return nil
}

// SyncPlatformUserRequest entrada para dar de alta un usuario de plataforma ya existente en el proveedor.
type SyncPlatformUserRequest struct {
	RoleNames []string `json:"role_names"`
}
