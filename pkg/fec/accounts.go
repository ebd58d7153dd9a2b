package fec

import (
	"strings"
	"unicode"
)

// Account par número/etiqueta del plan contable general (PCG).
type Account struct {
	Number string
	Label  string
}

// Journal par código/etiqueta de diario.
type Journal struct {
	Code  string
	Label string
}

var (
	JournalSales = Journal{Code: "VTE", Label: "Journal des ventes"}
	JournalBank  = Journal{Code: "BNQ", Label: "Journal de banque"}

	AccountReceivable = Account{Number: "411000", Label: "Clients"}
	AccountRevenue    = Account{Number: "706000", Label: "Prestations de services"}
	AccountVATOut     = Account{Number: "445710", Label: "TVA collectée"}
	AccountBank       = Account{Number: "512000", Label: "Banque"}
)

// receivableRoot prefijo de las cuentas auxiliares de paciente.
const receivableRoot = "411"

// treasuryAccounts enruta cada medio de pago a su cuenta de tesorería.
// Añadir un medio de pago nuevo es añadir una entrada aquí.
var treasuryAccounts = map[string]Account{
	"cash":     {Number: "530000", Label: "Caisse"},
	"check":    {Number: "512000", Label: "Banque - Chèques"},
	"card":     {Number: "512100", Label: "Banque - Cartes bancaires"},
	"transfer": {Number: "512000", Label: "Banque - Virements"},
	"cpam":     {Number: "512200", Label: "Banque - CPAM"},
	"mutuelle": {Number: "512300", Label: "Banque - Mutuelle"},
}

// TreasuryAccount devuelve la cuenta de tesorería del medio de pago; medios
// desconocidos van a la cuenta bancaria por defecto.
func TreasuryAccount(method string) Account {
	if acc, ok := treasuryAccounts[strings.ToLower(strings.TrimSpace(method))]; ok {
		return acc
	}
	return AccountBank
}

// PatientAccountNumber deriva la cuenta auxiliar del paciente: 411 + los 5 primeros
// caracteres alfanuméricos del ID en mayúsculas.
func PatientAccountNumber(patientID string) string {
	var b strings.Builder
	for _, r := range patientID {
		if b.Len() == 5 {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return receivableRoot + b.String()
}
