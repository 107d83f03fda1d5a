package entity

// Nombres del catálogo de roles. Son claves exactas (sensibles a mayúsculas).
const (
	RoleOwner         = "Owner"
	RoleSupport       = "Support"
	RoleAccounts      = "Accounts"
	RoleReports       = "Reports"
	RoleStoreOwner    = "StoreOwner"
	RoleStoreAccount  = "StoreAccount"
	RoleStoreSupport  = "StoreSupport"
	RoleStoreCustomer = "StoreCustomer"
)

// Role entrada inmutable del catálogo de roles.
type Role struct {
	ID   int
	Name string
}
