package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema devuelve el DDL completo.
func Schema() string { return schemaSQL }

// EnsureSchema aplica el esquema. Sin argumentos pgx usa el protocolo simple, que admite
// varias sentencias en un solo Exec.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
