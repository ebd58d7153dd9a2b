package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jhoicas/dentalcloud-api/internal/infrastructure/postgres"
	"github.com/jhoicas/dentalcloud-api/pkg/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones pendientes (configuración por variables de entorno)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := newLogger()
		ctx := context.Background()
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			return err
		}
		log.Info().Msg("migraciones al día")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
