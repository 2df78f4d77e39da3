package main

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-import/internal/infrastructure/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplicar las migraciones de base de datos",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := postgres.Migrate(cmd.Context(), a.cfg.DB.ConnectionString()); err != nil {
				return err
			}
			a.log.Info().Msg("migraciones aplicadas")
			return nil
		},
	}
}
