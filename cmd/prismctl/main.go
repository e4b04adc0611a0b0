// prismctl es la CLI de operación: seed de definiciones builtin, prune de
// tokens vencidos e invitaciones manuales sin pasar por la API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/prism/internal/accounts"
	"github.com/dropDatabas3/prism/internal/config"
	"github.com/dropDatabas3/prism/internal/domain/repository"
	"github.com/dropDatabas3/prism/internal/email"
	"github.com/dropDatabas3/prism/internal/observability/logger"
	"github.com/dropDatabas3/prism/internal/prism"
	"github.com/dropDatabas3/prism/internal/security/password"
	"github.com/dropDatabas3/prism/internal/store"
	_ "github.com/dropDatabas3/prism/internal/store/memory"
	"github.com/dropDatabas3/prism/internal/store/pg"
	"github.com/dropDatabas3/prism/internal/tokens"
)

var configPath string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "prismctl",
		Short:         "Herramientas de operación del servicio de contenido",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "config.yaml"), "ruta del config YAML")

	root.AddCommand(seedCmd(), migrateCmd(), pruneTokensCmd(), inviteCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// openStore carga config y abre el backend de storage configurado.
func openStore(ctx context.Context) (*config.Config, store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = config.Default()
		} else {
			return nil, nil, err
		}
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: envOr("LOG_LEVEL", "warn"), ServiceName: "prismctl"})

	st, err := store.Open(ctx, store.Config{
		Driver:   cfg.Storage.Driver,
		DSN:      cfg.Storage.DSN,
		MaxConns: cfg.Storage.Postgres.MaxConns,
		MinConns: cfg.Storage.Postgres.MinConns,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Registra las definiciones de contenido builtin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			svc := prism.New(st.Content(), prism.NewSchemaValidator())
			if err := prism.SeedBuiltins(ctx, svc); err != nil {
				return err
			}
			fmt.Println("builtin definitions seeded")
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones pendientes (solo postgres)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			pgStore, ok := st.(*pg.Store)
			if !ok {
				return fmt.Errorf("storage driver is not postgres")
			}
			n, err := pg.Migrate(ctx, pgStore.Pool())
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", n)
			return nil
		},
	}
}

func pruneTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-tokens",
		Short: "Borra los tokens de seguridad vencidos y no consumidos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			_, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			n, err := tokens.New(st.Tokens()).Prune(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("pruned %d token(s)\n", n)
			return nil
		},
	}
}

func inviteCmd() *cobra.Command {
	var (
		tenantID   string
		tenantName string
		role       string
	)
	cmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "Invita un usuario a un tenant y emite su token de activación",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			content := prism.New(st.Content(), prism.NewSchemaValidator())
			if err := prism.SeedBuiltins(ctx, content); err != nil {
				return err
			}

			mailSvc := email.NewService(email.NoopSender{}, cfg.Email.BaseURL)
			acct := accounts.New(accounts.Deps{
				Content: content,
				Tokens:  tokens.New(st.Tokens()),
				Roles:   st.Roles(),
				Mail:    mailSvc,
				Policy: password.Policy{
					MinLength: cfg.Security.PasswordPolicy.MinLength,
				},
				InviteTTL: cfg.Tokens.InviteTTL,
				ResetTTL:  cfg.Tokens.ResetTTL,
			})

			name := tenantName
			if name == "" {
				name = tenantID
			}
			// Actor vacío: invocación operativa, sin roleguard.
			raw, err := acct.Invite(ctx, "", args[0], tenantID, name, repository.TenantRoleName(role))
			if err != nil {
				return err
			}
			// El token crudo se imprime una sola vez; no queda en ningún lado.
			fmt.Println("activation link:", mailSvc.InviteLink(raw))
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant destino (requerido)")
	cmd.Flags().StringVar(&tenantName, "tenant-name", "", "nombre visible del tenant")
	cmd.Flags().StringVar(&role, "role", string(repository.TenantRoleMember), "rol inicial en el tenant")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
