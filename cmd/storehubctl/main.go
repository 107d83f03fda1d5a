// storehubctl tareas de operación sobre la base de StoreHub: esquema, catálogo de roles y
// verificación manual de ID tokens.
//
// Uso: go run ./cmd/storehubctl <comando>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/storehub-api/internal/application/usecase"
	"github.com/jhoicas/storehub-api/internal/domain/authz"
	"github.com/jhoicas/storehub-api/internal/infrastructure/postgres"
	"github.com/jhoicas/storehub-api/pkg/config"
	"github.com/jhoicas/storehub-api/pkg/firebase"
)

func main() {
	var (
		cfg     *config.Config
		out     = "text"
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:           "storehubctl",
		Short:         "Operación de StoreHub (esquema, roles, tokens)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if out != "text" && out != "json" {
				return fmt.Errorf("--out inválido %q (json|text)", out)
			}
			var err error
			cfg, err = config.Load()
			return err
		},
	}
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")
	root.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "Tiempo máximo por comando")

	withPool := func(cmd *cobra.Command, fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		defer pool.Close()
		return fn(ctx, pool)
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Crear tablas e índices que falten",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := postgres.EnsureSchema(ctx, pool); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed-roles",
		Short: "Sembrar el catálogo de roles (idempotente)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				if err := postgres.EnsureSchema(ctx, pool); err != nil {
					return err
				}
				if err := usecase.NewRoleService(postgres.NewRoleRepository(pool)).Seed(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d roles sembrados\n", len(authz.AllRoles()))
				return nil
			})
		},
	}

	rolesCmd := &cobra.Command{
		Use:   "roles",
		Short: "Listar el catálogo de roles persistido",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, func(ctx context.Context, pool *pgxpool.Pool) error {
				roles, err := usecase.NewRoleService(postgres.NewRoleRepository(pool)).Catalog(ctx)
				if err != nil {
					return err
				}
				if out == "json" {
					return printJSON(cmd, roles)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNOMBRE\tALCANCE")
				for _, r := range roles {
					scope := "plataforma"
					if authz.IsStoreScoped(r.Name) {
						scope = "tienda"
					}
					fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.Name, scope)
				}
				return w.Flush()
			})
		},
	}

	var token string
	verifyCmd := &cobra.Command{
		Use:   "verify-token",
		Short: "Verificar un ID token de Firebase contra las llaves publicadas",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("--token es requerido")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			keys, err := firebase.NewRemoteKeys(ctx, cfg.Firebase.JWKSURL, 0)
			if err != nil {
				return err
			}
			verifier, err := firebase.NewVerifier(cfg.Firebase.ProjectID, keys)
			if err != nil {
				return err
			}
			tok, err := verifier.Verify(ctx, token)
			if err != nil {
				return err
			}
			if out == "json" {
				return printJSON(cmd, tok)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uid=%s email=%s expira=%s\n", tok.UID, tok.Email, tok.Expires.Format(time.RFC3339))
			return nil
		},
	}
	verifyCmd.Flags().StringVar(&token, "token", "", "ID token (JWT)")

	root.AddCommand(schemaCmd, seedCmd, rolesCmd, verifyCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
