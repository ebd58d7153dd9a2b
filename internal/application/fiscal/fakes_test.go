package fiscal_test

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/dentalcloud-api/internal/application/fiscal"
	"github.com/jhoicas/dentalcloud-api/internal/domain/entity"
	"github.com/jhoicas/dentalcloud-api/pkg/fec"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	labID      = "00000000-0000-0000-0000-000000000001"
	otherLabID = "00000000-0000-0000-0000-000000000002"
	patientID  = "11111111-aaaa"
)

var errDB = errors.New("conexión perdida")

type memLabs struct{ labs map[string]*entity.Laboratory }

func (m *memLabs) Create(_ context.Context, l *entity.Laboratory) error {
	m.labs[l.ID] = l
	return nil
}

func (m *memLabs) GetByID(_ context.Context, id string) (*entity.Laboratory, error) {
	return m.labs[id], nil
}

type memPatients struct{ patients map[string]*entity.Patient }

func (m *memPatients) GetByID(_ context.Context, id string) (*entity.Patient, error) {
	return m.patients[id], nil
}

type memInvoices struct {
	items []*entity.Invoice
	err   error
}

func (m *memInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	for _, inv := range m.items {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (m *memInvoices) ListByPeriod(_ context.Context, lab string, start, end time.Time) ([]*entity.Invoice, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*entity.Invoice
	for _, inv := range m.items {
		if inv.LaboratoryID == lab && !inv.Date.Before(start) && !inv.Date.After(end) {
			out = append(out, inv)
		}
	}
	return out, nil
}

type memPayments struct {
	items []*entity.Payment
	err   error
}

func (m *memPayments) ListByPeriod(_ context.Context, lab string, start, end time.Time) ([]*entity.Payment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*entity.Payment
	for _, p := range m.items {
		if p.LaboratoryID == lab && !p.Date.Before(start) && !p.Date.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

type memCreditNotes struct {
	items []*entity.CreditNote
	err   error
}

func (m *memCreditNotes) GetByID(_ context.Context, id string) (*entity.CreditNote, error) {
	for _, cn := range m.items {
		if cn.ID == id {
			return cn, nil
		}
	}
	return nil, nil
}

func (m *memCreditNotes) ListByPeriod(_ context.Context, lab string, start, end time.Time) ([]*entity.CreditNote, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*entity.CreditNote
	for _, cn := range m.items {
		if cn.LaboratoryID == lab && !cn.Date.Before(start) && !cn.Date.After(end) {
			out = append(out, cn)
		}
	}
	return out, nil
}

type memCerts struct{ byLab map[string]*entity.Certificate }

func (m *memCerts) Create(_ context.Context, c *entity.Certificate) error {
	m.byLab[c.LaboratoryID] = c
	return nil
}

func (m *memCerts) GetByLaboratoryID(_ context.Context, id string) (*entity.Certificate, error) {
	return m.byLab[id], nil
}

// stubRenderer guarda la última entrada recibida.
type stubRenderer struct {
	creditNote fiscal.CreditNoteDocument
	report     fiscal.FiscalPeriodReport
	vat        fiscal.AnnualVATReport
}

func (s *stubRenderer) RenderCreditNote(_ context.Context, doc fiscal.CreditNoteDocument) ([]byte, error) {
	s.creditNote = doc
	return []byte("%PDF-avoir"), nil
}

func (s *stubRenderer) RenderFiscalReport(_ context.Context, r fiscal.FiscalPeriodReport) ([]byte, error) {
	s.report = r
	return []byte("%PDF-rapport"), nil
}

func (s *stubRenderer) RenderAnnualVAT(_ context.Context, r fiscal.AnnualVATReport) ([]byte, error) {
	s.vat = r
	return []byte("%PDF-tva"), nil
}

type stubEncoder struct{ lines []fec.Line }

func (s *stubEncoder) Encode(_ fec.Export, lines []fec.Line) (*fiscal.Encoded, error) {
	s.lines = lines
	return &fiscal.Encoded{Content: []byte("<FEC/>"), ContentType: "application/xml", Extension: "xml", Digest: "abc"}, nil
}

type fixture struct {
	labs        *memLabs
	patients    *memPatients
	invoices    *memInvoices
	payments    *memPayments
	creditNotes *memCreditNotes
	certs       *memCerts
	renderer    *stubRenderer
	encoder     *stubEncoder
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func invoice(id, number, day, status, subtotal, tax, patient string) *entity.Invoice {
	sub, tx := dec(subtotal), dec(tax)
	return &entity.Invoice{
		ID: id, LaboratoryID: labID, PatientID: patientID, PatientName: patient,
		Number: number, Date: date(day), Subtotal: sub, TaxAmount: tx, Total: sub.Add(tx),
		Status: status,
	}
}

func newFixture() *fixture {
	f := &fixture{
		labs: &memLabs{labs: map[string]*entity.Laboratory{
			labID: {ID: labID, Name: "Cabinet Dupont", SIRET: "12345678900011", RPPS: "10001234567",
				Address: "12 rue de la Paix", PostalCode: "75002", City: "Paris"},
			otherLabID: {ID: otherLabID, Name: "Cabinet Sans SIRET"},
		}},
		patients: &memPatients{patients: map[string]*entity.Patient{
			patientID: {ID: patientID, FirstName: "Jeanne", LastName: "Martin",
				Address: "3 avenue Foch, 69006 Lyon", SecurityNumber: "2850375123456"},
		}},
		invoices: &memInvoices{items: []*entity.Invoice{
			invoice("inv-1", "FAC-001", "2024-03-15", entity.InvoiceStatusPaid, "100.00", "20.00", "Jeanne Martin"),
			invoice("inv-2", "FAC-002", "2024-03-18", entity.InvoiceStatusDraft, "80.00", "16.00", "Paul Durand"),
			invoice("inv-3", "FAC-003", "2024-05-02", entity.InvoiceStatusSent, "200.00", "40.00", "Paul Durand"),
			invoice("inv-4", "FAC-004", "2024-05-10", entity.InvoiceStatusCancelled, "50.00", "10.00", "Luc Petit"),
		}},
		payments: &memPayments{items: []*entity.Payment{{
			ID: "abcdef0123456789", LaboratoryID: labID, InvoiceID: "inv-1", InvoiceNumber: "FAC-001",
			PatientID: patientID, PatientName: "Jeanne Martin", Date: date("2024-03-20"),
			Amount: dec("50.00"), Method: entity.PaymentCard, Source: "patient",
		}}},
		creditNotes: &memCreditNotes{items: []*entity.CreditNote{{
			ID: "cn-1", LaboratoryID: labID, InvoiceID: "inv-1", InvoiceNumber: "FAC-001",
			InvoiceDate: date("2024-03-15"), PatientID: patientID, PatientName: "Jeanne Martin",
			Number: "AV-001", Date: date("2024-03-25"), CreditType: entity.CreditTypeCorrection,
			Reason: "Acte facturé deux fois", Subtotal: dec("50.00"), TaxRate: dec("20"),
			TaxAmount: dec("10.00"), Total: dec("60.00"),
		}}},
		certs:    &memCerts{byLab: map[string]*entity.Certificate{}},
		renderer: &stubRenderer{},
		encoder:  &stubEncoder{},
	}
	return f
}
