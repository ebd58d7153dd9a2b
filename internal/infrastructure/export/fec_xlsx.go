package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
	"github.com/jhoicas/dentalcloud-api/pkg/fec"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetFEC        = "FEC"
)

// columnas numéricas (1-based)
const (
	colDebit         = 12
	colCredit        = 13
	colMontantDevise = 17
)

var amountColumns = []int{colDebit, colCredit, colMontantDevise}

var _ fiscal.FECEncoder = (*XLSXEncoder)(nil)

// XLSXEncoder FEC como hoja de cálculo para el contable: mismas 18 columnas que el
// fichero de texto, importes como números.
type XLSXEncoder struct{}

// NewXLSXEncoder construye el encoder.
func NewXLSXEncoder() *XLSXEncoder { return &XLSXEncoder{} }

// Encode escribe cabecera y una fila por línea en la hoja "FEC".
func (e *XLSXEncoder) Encode(_ fec.Export, lines []fec.Line) (*fiscal.Encoded, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetFEC); err != nil {
		return nil, fmt.Errorf("export xlsx: hoja: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export xlsx: estilo: %w", err)
	}
	amountFmt, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("export xlsx: estilo: %w", err)
	}

	for i, h := range fec.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetFEC, cell, h); err != nil {
			return nil, fmt.Errorf("export xlsx: cabecera: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(fec.Header), 1)
	_ = f.SetCellStyle(sheetFEC, "A1", last, bold)

	for r, l := range lines {
		rowNum := r + 2
		for c, v := range l.Fields() {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNum)
			var value any = v
			switch c + 1 {
			case colDebit:
				value = l.Debit.Abs().InexactFloat64()
			case colCredit:
				value = l.Credit.Abs().InexactFloat64()
			case colMontantDevise:
				value = l.MontantDevise.Abs().InexactFloat64()
			}
			if err := f.SetCellValue(sheetFEC, cell, value); err != nil {
				return nil, fmt.Errorf("export xlsx: fila %d: %w", rowNum, err)
			}
		}
	}
	if len(lines) > 0 {
		lastRow := len(lines) + 1
		for _, c := range amountColumns {
			from, _ := excelize.CoordinatesToCellName(c, 2)
			to, _ := excelize.CoordinatesToCellName(c, lastRow)
			_ = f.SetCellStyle(sheetFEC, from, to, amountFmt)
		}
	}

	_ = f.SetColWidth(sheetFEC, "A", "A", 8)
	_ = f.SetColWidth(sheetFEC, "B", "B", 20)
	_ = f.SetColWidth(sheetFEC, "C", "J", 14)
	_ = f.SetColWidth(sheetFEC, "K", "K", 40)
	_ = f.SetColWidth(sheetFEC, "L", "M", 12)
	_ = f.SetPanes(sheetFEC, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export xlsx: escribir: %w", err)
	}
	return &fiscal.Encoded{
		Content:     buf.Bytes(),
		ContentType: contentTypeXLSX,
		Extension:   "xlsx",
	}, nil
}
