package entity

import "time"

// Estados de una tienda.
const (
	StoreStatusActive = "active"
	StoreStatusFrozen = "frozen"
)

// Store representa un tenant del sistema.
type Store struct {
	ID           int64
	StoreCode    string // único, es el límite de visibilidad de los roles de tienda
	Name         string
	Description  string
	CurrencyCode string
	Status       string // active, frozen
	OwnerUserID  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive informa si la tienda admite escrituras.
func (s *Store) IsActive() bool {
	return s != nil && s.Status == StoreStatusActive
}
