package application

import (
	"encoding/base64"
	"errors"
	"fmt"

	"crpt-gateway/client/crpt/domain"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-multierror"
)

var (
	errNoDocument        = errors.New("document is required")
	errMissingIdentifier = errors.New("uit_code or uitu_code must be set")
	errUnknownGroup      = errors.New("unknown product group")
	errMissingValue      = errors.New(`response has no "value" field`)
)

var productHasIdentifier = validation.By(func(v interface{}) error {
	p, ok := v.(domain.Product)
	if !ok || !p.HasIdentifier() {
		return errMissingIdentifier
	}
	return nil
})

var knownProductGroup = validation.By(func(v interface{}) error {
	g, ok := v.(domain.ProductGroup)
	if !ok || !g.Valid() {
		return errUnknownGroup
	}
	return nil
})

// PrepareService transforma documento + assinatura + grupo em envelope.
// Transformação pura: não toca rede nem gate.
type PrepareService struct {
	Encoder domain.Encoder
}

func (s PrepareService) Prepare(doc *domain.Document, signature string, pg domain.ProductGroup) (domain.Envelope, error) {
	if err := Validate(doc, pg); err != nil {
		return domain.Envelope{}, err
	}

	raw, err := s.Encoder.Encode(doc)
	if err != nil {
		return domain.Envelope{}, &domain.EncodingError{Op: domain.OpEncodeDocument, Err: err}
	}

	return domain.Envelope{
		DocumentFormat:  domain.FormatManual.String(),
		ProductDocument: base64.StdEncoding.EncodeToString(raw),
		ProductGroup:    pg.String(),
		Signature:       signature,
		Type:            domain.LPIntroduceGoods.String(),
	}, nil
}

// Validate checa o grupo e todos os produtos, e reporta todos os problemas de uma vez.
func Validate(doc *domain.Document, pg domain.ProductGroup) error {
	if doc == nil {
		return &domain.ValidationError{Err: errNoDocument}
	}

	var result *multierror.Error
	if err := validation.Validate(pg, knownProductGroup); err != nil {
		result = multierror.Append(result, fmt.Errorf("product_group: %w", err))
	}
	for i, p := range doc.Products {
		if err := validation.Validate(p, productHasIdentifier); err != nil {
			result = multierror.Append(result, fmt.Errorf("products[%d]: %w", i, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return &domain.ValidationError{Err: err}
	}
	return nil
}
