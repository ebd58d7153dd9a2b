package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/dentalcloud-api/internal/application/dto"
	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
	"github.com/jhoicas/dentalcloud-api/internal/infrastructure/export"
	"github.com/jhoicas/dentalcloud-api/pkg/fec"
)

var fecCmd = &cobra.Command{
	Use:   "fec <export.json>",
	Short: "Genera el FEC a partir de un volcado JSON del periodo",
	Long: `Lee un JSON con siret, start, end, invoices, payments y creditNotes
(fechas RFC 3339, importes como texto o número) y escribe el FEC en txt, xml o xlsx.`,
	Args: cobra.ExactArgs(1),
	RunE: runFEC,
}

func init() {
	rootCmd.AddCommand(fecCmd)
	fecCmd.Flags().StringP("format", "f", dto.FECFormatTXT, "txt | xml | xlsx")
	fecCmd.Flags().StringP("out", "o", "", "directorio de salida (por defecto el actual)")
}

func readExport(path string) (fec.Export, error) {
	var exp fec.Export
	raw, err := os.ReadFile(path)
	if err != nil {
		return exp, err
	}
	if err := json.Unmarshal(raw, &exp); err != nil {
		return exp, fmt.Errorf("JSON inválido: %w", err)
	}
	if fec.SIREN(exp.SIRET) == "" {
		return exp, fmt.Errorf("siret requerido")
	}
	return exp, nil
}

func runFEC(cmd *cobra.Command, args []string) error {
	log := newLogger()
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")

	exp, err := readExport(args[0])
	if err != nil {
		return err
	}
	lines, err := exp.Lines()
	if err != nil {
		return err
	}

	encoders := map[string]fiscal.FECEncoder{
		dto.FECFormatXML:  export.NewXMLEncoder(),
		dto.FECFormatXLSX: export.NewXLSXEncoder(),
	}
	name := exp.FileName()
	var content []byte
	switch format = strings.ToLower(format); format {
	case dto.FECFormatTXT:
		var buf bytes.Buffer
		if err := fec.Write(&buf, lines); err != nil {
			return err
		}
		content = buf.Bytes()
	default:
		enc, ok := encoders[format]
		if !ok {
			return fmt.Errorf("formato %q no soportado", format)
		}
		out, err := enc.Encode(exp, lines)
		if err != nil {
			return err
		}
		content = out.Content
		name = strings.TrimSuffix(name, ".txt") + "." + out.Extension
		if out.Digest != "" {
			log.Info().Str("digest", out.Digest).Msg("huella C14N del XML")
		}
	}

	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return err
	}
	log.Info().Str("file", path).Int("lines", len(lines)).Msg("FEC escrito")
	return nil
}
