package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crudstore.app/internal/config"
	"crudstore.app/internal/migrate"
	"crudstore.app/internal/obs"
	"crudstore.app/internal/seed"
	"crudstore.app/internal/store/pg"
)

func main() {
	var (
		dsn      = os.Getenv("CRUDSTORE_PG_DSN")
		envFile  = ".env"
		sqlDir   string
		timeout  = 60 * time.Second
		withDemo = true
		log      = zap.NewNop()
		store    *pg.Store
		mgr      *migrate.Manager
	)

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Schema migrations and seed data for crudstore",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				if cfg, err := config.Load(envFile); err == nil {
					dsn = cfg.PGDSN
				}
			}
			if dsn == "" {
				return fmt.Errorf("missing DSN: provide --dsn or CRUDSTORE_PG_DSN")
			}
			l, err := obs.NewLogger("dev", "info")
			if err != nil {
				return err
			}
			log = l.Named("migrate")

			store, err = pg.Open(dsn)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			opts := []migrate.Option{migrate.WithLogger(log)}
			if sqlDir != "" {
				opts = append(opts, migrate.WithFS(os.DirFS(sqlDir), "migrations", "seeds"))
			}
			mgr = migrate.NewManager(store.DB(), opts...)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if store != nil {
				_ = store.Close()
			}
			_ = log.Sync()
		},
	}
	root.PersistentFlags().StringVar(&dsn, "dsn", dsn, "PostgreSQL DSN (env CRUDSTORE_PG_DSN)")
	root.PersistentFlags().StringVar(&envFile, "env-file", envFile, "Optional .env file read when --dsn is empty")
	root.PersistentFlags().StringVar(&sqlDir, "dir", "", "Directory with migrations/ and seeds/ (default: bundled SQL)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "Overall timeout")

	withCtx := func(run func(ctx context.Context) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return run(ctx)
		}
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: withCtx(func(ctx context.Context) error {
			applied, err := mgr.Up(ctx)
			for _, name := range applied {
				fmt.Println("applied", name)
			}
			if err == nil && len(applied) == 0 {
				fmt.Println("schema is up to date")
			}
			return err
		}),
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: withCtx(func(ctx context.Context) error {
			name, err := mgr.Down(ctx)
			if err != nil {
				return err
			}
			fmt.Println("rolled back", name)
			return nil
		}),
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "List applied migrations",
		RunE: withCtx(func(ctx context.Context) error {
			history, err := mgr.Status(ctx)
			if err != nil {
				return err
			}
			for _, item := range history {
				fmt.Println(item)
			}
			return nil
		}),
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the role catalog and, unless --demo=false, the demo users and catalog",
		RunE: withCtx(func(ctx context.Context) error {
			applied, err := mgr.Seed(ctx)
			for _, name := range applied {
				fmt.Println("seeded", name)
			}
			if err != nil || !withDemo {
				return err
			}
			return seed.Run(ctx, store, store, seed.WithLogger(log))
		}),
	}
	seedCmd.Flags().BoolVar(&withDemo, "demo", withDemo, "Also create demo users, categories and products")

	root.AddCommand(upCmd, downCmd, statusCmd, seedCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
