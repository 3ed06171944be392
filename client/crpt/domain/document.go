package domain

import (
	"strings"
	"time"
)

const (
	dateTimeLayout = "2006-01-02T15:04:05Z"
	dateLayout     = "2006-01-02"
)

// Document é o documento de introdução de mercadorias montado pelo chamador.
// O cliente apenas lê o documento; nunca o altera.
type Document struct {
	Description    *Description `json:"description,omitempty"`
	DocID          string       `json:"doc_id"`
	DocStatus      string       `json:"doc_status"`
	DocType        string       `json:"doc_type"`
	ImportRequest  bool         `json:"importRequest"`
	OwnerInn       string       `json:"owner_inn"`
	ParticipantInn string       `json:"participant_inn"`
	ProducerInn    string       `json:"producer_inn"`
	ProductionDate DateTime     `json:"production_date"`
	ProductionType string       `json:"production_type"`
	RegDate        Date         `json:"reg_date"`
	RegNumber      string       `json:"reg_number"`
	Products       []Product    `json:"products"`
}

type Description struct {
	ParticipantInn string `json:"participantInn"`
}

// Product é um item do documento. Precisa de pelo menos um dos códigos
// de identificação (UitCode ou UituCode).
type Product struct {
	CertificateDocument       string    `json:"certificate_document"`
	CertificateDocumentDate   DateTime  `json:"certificate_document_date"`
	CertificateDocumentNumber string    `json:"certificate_document_number"`
	OwnerInn                  string    `json:"owner_inn"`
	ProducerInn               string    `json:"producer_inn"`
	ProductionDate            *DateTime `json:"production_date,omitempty"`
	TnvedCode                 string    `json:"tnved_code"`
	UitCode                   string    `json:"uit_code,omitempty"`
	UituCode                  string    `json:"uitu_code,omitempty"`
}

// HasIdentifier informa se o produto tem UitCode ou UituCode preenchido.
func (p Product) HasIdentifier() bool {
	return strings.TrimSpace(p.UitCode) != "" || strings.TrimSpace(p.UituCode) != ""
}

// Envelope é o corpo enviado para /lk/documents/send.
// É montado uma vez por envio e não é alterado depois.
type Envelope struct {
	DocumentFormat  string `json:"document_format"`
	ProductDocument string `json:"product_document"`
	ProductGroup    string `json:"product_group"`
	Signature       string `json:"signature"`
	Type            string `json:"type"`
}

// DateTime serializa como "yyyy-MM-ddTHH:mm:ssZ" (sempre UTC, sem fração de segundo).
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC().Truncate(time.Second)}
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.UTC().Format(dateTimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Date serializa como "yyyy-MM-dd". O dia é o do calendário do próprio valor,
// sem conversão de fuso.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
