package application

import (
	"encoding/base64"
	"errors"
	"testing"

	"crpt-gateway/client/crpt/domain"
	"crpt-gateway/client/crpt/infra"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingEncoder struct{ infra.JSONEncoder }

func (failingEncoder) Encode(any) ([]byte, error) { return nil, errors.New("unsupported field") }

func validDocument() *domain.Document {
	return &domain.Document{
		DocID:          "doc-1",
		ParticipantInn: "7700000000",
		RegDate:        domain.NewDate(2024, 5, 20),
		Products: []domain.Product{
			{UitCode: "0104600000000001", TnvedCode: "0401"},
			{UituCode: "uitu-2", TnvedCode: "0401"},
		},
	}
}

func TestPrepare_BuildsEnvelope(t *testing.T) {
	svc := PrepareService{Encoder: infra.JSONEncoder{}}
	doc := validDocument()

	env, err := svc.Prepare(doc, "sig==", domain.Milk)
	require.NoError(t, err)

	assert.Equal(t, "MANUAL", env.DocumentFormat)
	assert.Equal(t, "LP_INTRODUCE_GOODS", env.Type)
	assert.Equal(t, "milk", env.ProductGroup)
	assert.Equal(t, "sig==", env.Signature)

	raw, err := base64.StdEncoding.DecodeString(env.ProductDocument)
	require.NoError(t, err)
	var back domain.Document
	require.NoError(t, infra.JSONEncoder{}.Decode(raw, &back))
	assert.Equal(t, *doc, back)
}

func TestPrepare_EmptySignatureIsAccepted(t *testing.T) {
	env, err := PrepareService{Encoder: infra.JSONEncoder{}}.Prepare(validDocument(), "", domain.Shoes)
	require.NoError(t, err)
	assert.Equal(t, "", env.Signature)
}

func TestPrepare_RejectsProductWithoutCodes(t *testing.T) {
	doc := validDocument()
	doc.Products = append(doc.Products, domain.Product{TnvedCode: "0401"}, domain.Product{UitCode: " "})

	env, err := PrepareService{Encoder: infra.JSONEncoder{}}.Prepare(doc, "sig", domain.Milk)
	require.Error(t, err)
	assert.Equal(t, domain.Envelope{}, env)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	require.Len(t, merr.Errors, 2)
	assert.Contains(t, merr.Errors[0].Error(), "products[2]")
	assert.Contains(t, merr.Errors[1].Error(), "products[3]")
}

func TestPrepare_RejectsNilDocumentAndUnknownGroup(t *testing.T) {
	svc := PrepareService{Encoder: infra.JSONEncoder{}}

	_, err := svc.Prepare(nil, "sig", domain.Milk)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Prepare(validDocument(), "sig", domain.ProductGroupUnknown)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "product_group")
}

func TestPrepare_EncodingFailureIsDistinct(t *testing.T) {
	_, err := PrepareService{Encoder: failingEncoder{}}.Prepare(validDocument(), "sig", domain.Milk)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEncoding)
	assert.NotErrorIs(t, err, domain.ErrBadResponse)
	assert.NotErrorIs(t, err, domain.ErrValidation)
}

func TestPrepare_DocumentWithoutProductsIsValid(t *testing.T) {
	doc := validDocument()
	doc.Products = nil
	_, err := PrepareService{Encoder: infra.JSONEncoder{}}.Prepare(doc, "sig", domain.Tobacco)
	require.NoError(t, err)
}
