package ports

import "context"

// ExternalIdentity datos de una identidad verificada por el proveedor externo (Firebase).
type ExternalIdentity struct {
	UID         string
	Email       string
	DisplayName string
	Disabled    bool
}

// IdentityProvider define el puerto de salida hacia el proveedor de identidad.
// Las implementaciones deben clasificar sus fallas con los errores de dominio:
// domain.ErrInvalidCredential (token inválido o vencido), domain.ErrUserNotFound
// y domain.ErrProviderUnavailable (red, timeout o cancelación; el único reintentable).
type IdentityProvider interface {
	// VerifyToken valida el ID token y devuelve la identidad que representa.
	VerifyToken(ctx context.Context, idToken string) (*ExternalIdentity, error)
	GetUser(ctx context.Context, uid string) (*ExternalIdentity, error)
	// CreateUser registra una cuenta con email y password y devuelve su uid.
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SetDisabled(ctx context.Context, uid string, disabled bool) error
}
