package entity

// Campos por los que se puede ordenar un listado de usuarios.
// El adaptador de persistencia debe tener una columna para cada uno.
const (
	UserSortFullName  = "fullname"
	UserSortEmail     = "email"
	UserSortCreatedAt = "created_at"
	UserSortUpdatedAt = "updated_at"
	UserSortCountry   = "country"
	UserSortStoreCode = "store_code"
)

// UserSortFields conjunto de campos ordenables.
var UserSortFields = []string{
	UserSortFullName, UserSortEmail, UserSortCreatedAt,
	UserSortUpdatedAt, UserSortCountry, UserSortStoreCode,
}

// UserFilter filtros ya saneados de un listado de usuarios.
type UserFilter struct {
	Names     []string
	Emails    []string
	Stores    []string
	Countries []string
	Platform  bool // solo usuarios con algún rol de plataforma
	Inactive  bool // listar inactivos en lugar de activos
}

// UserOrder criterio de orden.
type UserOrder struct {
	Field string
	Desc  bool
}

// UserListQuery resultado de la reconciliación: filtros y órdenes permitidos.
type UserListQuery struct {
	Filter UserFilter
	Orders []UserOrder
}

// UserPage página de resultados.
type UserPage struct {
	Items   []*User
	Total   int
	Pages   int
	HasNext bool
	HasPrev bool
}
