// Package firebase verifica ID tokens de Firebase Authentication y administra cuentas
// mediante la API REST de Identity Toolkit.
package firebase

import "errors"

var (
	// ErrInvalidToken token mal formado, vencido, con firma o claims inválidos.
	ErrInvalidToken = errors.New("firebase: token inválido")
	// ErrUnavailable no se pudo contactar al proveedor (llaves o API admin). Admite reintento.
	ErrUnavailable = errors.New("firebase: proveedor no disponible")
	// ErrUserNotFound la cuenta no existe en el proveedor.
	ErrUserNotFound = errors.New("firebase: usuario no encontrado")
	// ErrEmailExists ya hay una cuenta con ese email.
	ErrEmailExists = errors.New("firebase: el email ya está registrado")
	// ErrInvalidArgument el proveedor rechazó los datos (password débil, email inválido, etc.).
	ErrInvalidArgument = errors.New("firebase: argumento inválido")
)
