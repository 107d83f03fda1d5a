package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores de autenticación y autorización. Todos son locales al request;
// solo ErrProviderUnavailable admite reintento por parte del cliente.
var (
	ErrInvalidCredential   = errors.New("credencial inválida")
	ErrProviderUnavailable = errors.New("proveedor de identidad no disponible")
	ErrUnresolved          = errors.New("identidad no resuelta")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrUserInactive        = errors.New("usuario inactivo")
	ErrNoMatchingRole      = errors.New("ningún rol permitido para la operación")
	ErrRestrictedAccess    = errors.New("acceso restringido fuera del alcance del usuario")
	ErrInvalidParams       = errors.New("parámetros inválidos")
)

// IsRetryable informa si el error corresponde a una falla transitoria de una dependencia externa.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}
