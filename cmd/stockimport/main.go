// Command stockimport importa y exporta inventario desde la línea de comandos.
//
//	stockimport import --file inventario.csv            # valida y muestra el resumen
//	stockimport import --file inventario.csv --commit   # además persiste las filas válidas
//	stockimport import --file inventario.xlsx --commit --dry-run
//	stockimport export --branch 1 --out inventario.xlsx
//	stockimport migrate
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-import/pkg/config"
	"github.com/jhoicas/stock-import/pkg/logger"
)

// Códigos de salida.
const (
	exitOK      = 0
	exitError   = 1
	exitPartial = 2 // commit con filas fallidas
)

type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitCodeError{code: code, err: err}
}

// app estado compartido por los subcomandos.
type app struct {
	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "stockimport",
		Short:         "Importación masiva de inventario y libro de stock",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			level := cfg.Log.Level
			if v, _ := cmd.Flags().GetBool("verbose"); v {
				level = "debug"
			}
			a.log = logger.New(logger.Config{Env: "development", Level: level, Output: cmd.ErrOrStderr()})
			return nil
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Log en nivel debug")

	root.AddCommand(newImportCmd(a), newExportCmd(a), newMigrateCmd(a))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var ec *exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		os.Exit(exitError)
	}
	os.Exit(exitOK)
}
