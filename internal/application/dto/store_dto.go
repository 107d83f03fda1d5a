package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/storehub-api/internal/domain"
)

// StoreRequest entrada para crear o actualizar los metadatos de una tienda.
type StoreRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	CurrencyCode string `json:"currency_code"` // ISO-4217
}

// Validate revisa forma y largos; la moneda se valida en el caso de uso.
func (r *StoreRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || len(r.Name) > 100 {
		return fmt.Errorf("%w: name requerido (máx. 100)", domain.ErrInvalidParams)
	}
	if len(r.Description) > 500 {
		return fmt.Errorf("%w: description demasiado larga", domain.ErrInvalidParams)
	}
	if r.CurrencyCode == "" {
		return fmt.Errorf("%w: currency_code requerido", domain.ErrInvalidParams)
	}
	return nil
}

// StoreResponse salida de una tienda.
type StoreResponse struct {
	StoreCode    string    `json:"store_code"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CurrencyCode string    `json:"currency_code"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
