package entity

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxUIDLength largo máximo de un uid de Firebase.
const MaxUIDLength = 128

// User cuenta interna ligada a exactamente una identidad externa (uid de Firebase).
type User struct {
	ID             int64
	UID            string // uid externo, único e inmutable
	Email          string
	FullName       string
	Phone          string
	Address1       string
	Address2       string
	Country        string // ISO-3166 alpha-2
	Currency       string // ISO-4217
	IsActive       bool
	IsPassTutorial bool
	StoreID        *int64 // from_store_id; nil si no está ligado a una tienda
	StoreCode      string // store_code de la tienda ligada (join)
	Roles          []Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RoleNames devuelve los nombres de los roles del usuario.
func (u *User) RoleNames() []string {
	out := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		out = append(out, r.Name)
	}
	return out
}

// UserProfile campos editables del perfil.
type UserProfile struct {
	FullName string
	Phone    string
	Address1 string
	Address2 string
	Country  string
	Currency string
}

// ValidUID informa si uid tiene la forma de un uid externo: no vacío, hasta 128 caracteres,
// sin espacios ni separadores de ruta.
func ValidUID(uid string) bool {
	if uid == "" || utf8.RuneCountInString(uid) > MaxUIDLength {
		return false
	}
	return !strings.ContainsAny(uid, " \t\r\n/")
}
