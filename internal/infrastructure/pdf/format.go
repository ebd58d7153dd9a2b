package pdf

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
)

var frPrinter = message.NewPrinter(language.French)

var frMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// money formatea un importe a la francesa: "1 234,50 €".
func money(d decimal.Decimal) string {
	return clean(frPrinter.Sprintf("%.2f", d.Round(2).InexactFloat64())) + " €"
}

// negMoney importe en negativo para los avoirs: "-60,00 €".
func negMoney(d decimal.Decimal) string {
	if d.IsZero() {
		return money(d)
	}
	return "-" + money(d.Abs())
}

// percent con un decimal: "50,0 %".
func percent(d decimal.Decimal) string {
	return clean(frPrinter.Sprintf("%.1f", d.Round(1).InexactFloat64())) + " %"
}

// quantity sin decimales superfluos: "1", "2,5".
func quantity(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1)
}

func frDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func frDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04:05")
}

// PeriodLabel etiqueta del periodo: "mars 2024", "T1 2024" o "Année 2024".
func PeriodLabel(periodType string, start time.Time) string {
	switch periodType {
	case fiscal.PeriodQuarter:
		return fmt.Sprintf("T%d %d", (int(start.Month())-1)/3+1, start.Year())
	case fiscal.PeriodYear:
		return fmt.Sprintf("Année %d", start.Year())
	default:
		return fmt.Sprintf("%s %d", frMonths[start.Month()-1], start.Year())
	}
}

// creditTypeLabel motivo del avoir en francés.
func creditTypeLabel(t string) string {
	switch t {
	case "correction":
		return "Correction"
	case "cancellation":
		return "Annulation"
	default:
		return "Remboursement"
	}
}

// clean deja el texto representable en Windows-1252, la codificación de las fuentes
// estándar del PDF: los espacios finos de x/text pasan a espacio normal y el resto de
// runas no codificables a '?'.
func clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u202f', '\u00a0':
			return ' '
		}
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return '?'
		}
		return r
	}, s)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
