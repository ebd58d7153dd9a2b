// Command fiscalctl herramientas de línea de comandos para el contable y el auditor:
// FEC desde un volcado JSON, verificación de firmas, huellas v1 y migraciones.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/dentalcloud-api/pkg/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:           "fiscalctl",
	Short:         "Herramientas fiscales de DentalCloud",
	Long:          "Genera el FEC, verifica firmas RSA-PSS, calcula huellas de documentos y aplica migraciones.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func newLogger() *logger.Logger {
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Env: "development", Level: level, Output: os.Stderr})
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log de depuración")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
