package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/internal/domain/csvimport"
	"github.com/jhoicas/stock-import/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-import/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-import/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-import/internal/infrastructure/reporting"
	infraxlsx "github.com/jhoicas/stock-import/internal/infrastructure/xlsx"
)

type importOptions struct {
	file       string
	commit     bool
	dryRun     bool
	reportPath string
	user       string
	workers    int
}

func newImportCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Validar (y opcionalmente confirmar) un CSV o XLSX de inventario",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var store inventory.Persistence
			if opts.dryRun {
				store = memory.NewStore()
			} else if opts.commit {
				pool, err := postgres.NewPool(ctx, a.cfg.DB)
				if err != nil {
					return fmt.Errorf("conexión a PostgreSQL: %w", err)
				}
				defer pool.Close()
				store = postgres.NewStore(pool)
			}
			return runImport(ctx, a, cmd.OutOrStdout(), store, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Archivo CSV o XLSX (requerido)")
	cmd.Flags().BoolVar(&opts.commit, "commit", false, "Persistir las filas válidas (por defecto solo valida)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Confirmar contra un almacenamiento en memoria")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Escribir el reporte PDF en esta ruta")
	cmd.Flags().StringVar(&opts.user, "user", "cli", "Usuario registrado en los movimientos")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Filas en paralelo (por defecto IMPORT_WORKERS)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(ctx context.Context, a *app, out io.Writer, store inventory.Persistence, opts importOptions) error {
	raw, err := readInput(opts.file)
	if err != nil {
		return err
	}

	workers := a.cfg.Import.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}
	uc := inventory.NewImportUseCase(store, inventory.ImportConfig{
		Workers:         workers,
		RowTimeout:      a.cfg.Import.RowTimeout,
		DefaultLowStock: a.cfg.Import.DefaultLowStock,
	},
		inventory.WithLogger(a.log.With("import")),
		inventory.WithReporter(reporting.NewLogReporter(a.log)),
	)

	s := uc.NewSession(opts.user)
	res, err := s.Load(ctx, raw)
	if err != nil {
		return err
	}
	printBatch(out, res)

	if !opts.commit && !opts.dryRun {
		return nil
	}
	report, err := s.Commit(ctx)
	if err != nil {
		return err
	}
	printReport(out, *report)

	if opts.reportPath != "" {
		b, err := infrapdf.NewReportGenerator().RenderImportReport(ctx, *report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.reportPath, b, 0o644); err != nil {
			return fmt.Errorf("escribir reporte: %w", err)
		}
		fmt.Fprintf(out, "reporte: %s\n", opts.reportPath)
	}
	if report.Failed > 0 {
		return withCode(exitPartial, errors.New("importación con filas fallidas: "+report.Summary()))
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return infraxlsx.ToCSV(f)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func printBatch(out io.Writer, res csvimport.BatchResult) {
	fmt.Fprintf(out, "filas: %d  válidas: %d  advertencias: %d  errores: %d\n",
		res.Total, res.ValidCount, res.WarningCount, res.ErrorCount)
	for _, r := range res.Errors {
		fmt.Fprintf(out, "  línea %d: %s\n", r.Line, strings.Join(r.Errors, "; "))
	}
	for _, r := range res.Warnings {
		fmt.Fprintf(out, "  línea %d (advertencia): %s\n", r.Line, strings.Join(r.Warnings, "; "))
	}
}

func printReport(out io.Writer, r inventory.ImportReport) {
	fmt.Fprintf(out, "commit: %s\n", r.Summary())
	for _, o := range r.FailedRows() {
		fmt.Fprintf(out, "  línea %d: %s\n", o.Line, o.Error())
	}
}
