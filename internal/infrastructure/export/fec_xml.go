// Package export serializa el FEC en los formatos alternativos al texto plano:
// XML (estructura comptabilite/exercice/journal/ecriture/ligne) y hoja de cálculo.
package export

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
	"github.com/jhoicas/dentalcloud-api/pkg/fec"
)

const contentTypeXML = "application/xml"

var _ fiscal.FECEncoder = (*XMLEncoder)(nil)

// XMLEncoder FEC en XML. Digest es el SHA-256 hex del XML canónico (C14N) sin declaración.
type XMLEncoder struct{}

// NewXMLEncoder construye el encoder.
func NewXMLEncoder() *XMLEncoder { return &XMLEncoder{} }

// Encode agrupa las líneas por diario y por número de escritura, en el orden recibido.
func (e *XMLEncoder) Encode(exp fec.Export, lines []fec.Line) (*fiscal.Encoded, error) {
	doc := etree.NewDocument()
	root := doc.CreateElement("comptabilite")
	exercice := root.CreateElement("exercice")
	exercice.CreateElement("DateCloture").SetText(exp.End.Format(time.DateOnly))

	journals := map[string]*etree.Element{}
	var (
		current    *etree.Element
		currentKey string
	)
	for _, l := range lines {
		j, ok := journals[l.JournalCode]
		if !ok {
			j = exercice.CreateElement("journal")
			j.CreateElement("JournalCode").SetText(l.JournalCode)
			j.CreateElement("JournalLib").SetText(l.JournalLib)
			journals[l.JournalCode] = j
		}
		if key := l.JournalCode + "|" + l.EcritureNum; current == nil || key != currentKey {
			current = j.CreateElement("ecriture")
			currentKey = key
			current.CreateElement("EcritureNum").SetText(l.EcritureNum)
			current.CreateElement("EcritureDate").SetText(isoDate(l.EcritureDate))
			current.CreateElement("EcritureLib").SetText(l.EcritureLib)
			current.CreateElement("PieceRef").SetText(l.PieceRef)
			current.CreateElement("PieceDate").SetText(isoDate(l.PieceDate))
			if l.EcritureLet != "" {
				current.CreateElement("EcritureLet").SetText(l.EcritureLet)
				current.CreateElement("DateLet").SetText(isoDate(l.DateLet))
			}
			current.CreateElement("ValidDate").SetText(isoDate(l.ValidDate))
		}
		ligne := current.CreateElement("ligne")
		ligne.CreateElement("CompteNum").SetText(l.CompteNum)
		ligne.CreateElement("CompteLib").SetText(l.CompteLib)
		if l.CompAuxNum != "" {
			ligne.CreateElement("CompAuxNum").SetText(l.CompAuxNum)
			ligne.CreateElement("CompAuxLib").SetText(l.CompAuxLib)
		}
		ligne.CreateElement("Montantdevise").SetText(xmlAmount(l.MontantDevise))
		ligne.CreateElement("Idevise").SetText(l.Idevise)
		ligne.CreateElement("Debit").SetText(xmlAmount(l.Debit))
		ligne.CreateElement("Credit").SetText(xmlAmount(l.Credit))
	}

	doc.Indent(2)
	body, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("export xml: serializar: %w", err)
	}
	digest, err := Digest(body)
	if err != nil {
		return nil, err
	}
	return &fiscal.Encoded{
		Content:     append([]byte(xml.Header), body...),
		ContentType: contentTypeXML,
		Extension:   "xml",
		Digest:      digest,
	}, nil
}

// Digest SHA-256 hex de la forma canónica C14N del XML.
func Digest(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return "", fmt.Errorf("export xml: canonicalizar: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// isoDate AAAAMMJJ -> AAAA-MM-JJ (xs:date). Vacío se conserva.
func isoDate(d string) string {
	if len(d) != 8 {
		return d
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:]
}

// xmlAmount importe sin signo con punto decimal (xs:decimal).
func xmlAmount(d decimal.Decimal) string {
	return d.Abs().StringFixed(2)
}
