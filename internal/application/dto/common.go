package dto

// Valores de per_page admitidos por los listados.
var AllowedPerPage = []int{10, 20, 50, 100}

// ValidPerPage informa si n es un tamaño de página admitido.
func ValidPerPage(n int) bool {
	for _, v := range AllowedPerPage {
		if v == n {
			return true
		}
	}
	return false
}

// Envelope cuerpo común de todas las respuestas de la API.
// En éxito error y error_params son objetos vacíos; en error data es un objeto vacío.
type Envelope struct {
	Status      bool `json:"status"`
	Data        any  `json:"data"`
	Error       any  `json:"error"`
	ErrorParams any  `json:"error_params"`
}

// Success construye el envelope de éxito. data nil se serializa como {}.
func Success(data any) Envelope {
	if data == nil {
		data = struct{}{}
	}
	return Envelope{Status: true, Data: data, Error: struct{}{}, ErrorParams: struct{}{}}
}

// Failure construye el envelope de error.
func Failure(message string, params map[string]any) Envelope {
	if params == nil {
		params = map[string]any{}
	}
	return Envelope{Status: false, Data: struct{}{}, Error: message, ErrorParams: params}
}

// ErrorResponse código y mensaje de error (documentación de la API).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagingMeta metadatos de una página.
type PagingMeta struct {
	Next       bool `json:"next"`
	Prev       bool `json:"prev"`
	Pages      int  `json:"pages"`
	TotalItems int  `json:"total_items"`
}

// UserPageResponse página de usuarios.
type UserPageResponse struct {
	Meta  PagingMeta     `json:"meta"`
	Items []UserResponse `json:"items"`
}
