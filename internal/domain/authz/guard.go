package authz

import "github.com/jhoicas/storehub-api/internal/domain"

// DenyReason motivo de rechazo del guard.
type DenyReason string

const (
	ReasonNoMatchingRole DenyReason = "NO_MATCHING_ROLE"
	ReasonUserInactive   DenyReason = "USER_INACTIVE"
	ReasonUnresolved     DenyReason = "UNRESOLVED"
)

// Decision resultado explícito del guard.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Allow decisión positiva.
func Allow() Decision { return Decision{Allowed: true} }

// Deny decisión negativa con motivo.
func Deny(reason DenyReason) Decision { return Decision{Reason: reason} }

// Err traduce la decisión al error de dominio correspondiente (nil si se permite).
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUserInactive:
		return domain.ErrUserInactive
	case ReasonUnresolved:
		return domain.ErrUnresolved
	default:
		return domain.ErrNoMatchingRole
	}
}

// Authorize permite si el usuario está activo y tiene al menos uno de los roles permitidos.
// No hay herencia entre roles: cada llamada debe enumerar todos los roles que admite.
func Authorize(actx *AuthContext, allowed ...string) Decision {
	if !actx.Resolved() {
		return Deny(ReasonUnresolved)
	}
	if !actx.Active() {
		return Deny(ReasonUserInactive)
	}
	if actx.HasAnyRole(allowed...) {
		return Allow()
	}
	return Deny(ReasonNoMatchingRole)
}
