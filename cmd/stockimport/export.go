package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/internal/infrastructure/postgres"
	infraxlsx "github.com/jhoicas/stock-import/internal/infrastructure/xlsx"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		branchID int64
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exportar el inventario a CSV o XLSX (según la extensión de --out)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := inventory.ParseFormat(strings.TrimPrefix(filepath.Ext(outPath), "."))
			if err != nil {
				return err
			}
			pool, err := postgres.NewPool(ctx, a.cfg.DB)
			if err != nil {
				return fmt.Errorf("conexión a PostgreSQL: %w", err)
			}
			defer pool.Close()

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			n, err := inventory.NewExportUseCase(postgres.NewStore(pool), infraxlsx.New()).Export(ctx, f, branchID, format)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			a.log.Info().Int("items", n).Str("file", outPath).Msg("inventario exportado")
			return nil
		},
	}
	cmd.Flags().Int64Var(&branchID, "branch", 0, "Sucursal (0 = todas)")
	cmd.Flags().StringVar(&outPath, "out", "", "Archivo de salida .csv o .xlsx (requerido)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
