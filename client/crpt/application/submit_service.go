package application

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crpt-gateway/client/crpt/domain"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// SendPath é o endpoint de criação de documento (introdução de mercadorias).
const SendPath = "/lk/documents/send"

// Status tratados como aceitos pela API.
var acceptedStatus = map[int]bool{
	http.StatusOK:       true,
	http.StatusCreated:  true,
	http.StatusAccepted: true,
}

// SubmitService orquestra um envio completo:
// preparo -> permissão do gate -> token -> uma chamada HTTP -> classificação.
//
// Não há retry nem fila além do próprio gate.
type SubmitService struct {
	Preparer  PrepareService
	Admission AdmissionService
	Transport domain.Transport
	Tokens    domain.TokenProvider
	Encoder   domain.Encoder
	BaseURL   string

	Stats  domain.StatsStore
	Logger hclog.Logger

	// NewID e Now existem para os testes; nil usa uuid.NewString e time.Now.
	NewID func() string
	Now   func() time.Time
}

type sendResult struct {
	Value *string `json:"value"`
}

// Submit devolve o identificador do documento (campo "value" da resposta).
func (s SubmitService) Submit(ctx context.Context, doc *domain.Document, signature string, pg domain.ProductGroup) (string, error) {
	start := s.now()
	ev := domain.SubmissionEvent{SubmissionID: s.newID(), ProductGroup: pg, At: start}
	log := s.logger().With("submission_id", ev.SubmissionID, "product_group", pg.String())

	env, err := s.Preparer.Prepare(doc, signature, pg)
	if err != nil {
		log.Debug("document rejected before sending", "error", err)
		s.finish(ctx, log, ev, domain.OutcomeInvalid, start)
		return "", err
	}
	body, err := s.Encoder.Encode(env)
	if err != nil {
		err = &domain.EncodingError{Op: domain.OpEncodeEnvelope, Err: err}
		log.Error("cannot encode envelope", "error", err)
		s.finish(ctx, log, ev, domain.OutcomeInvalid, start)
		return "", err
	}

	// a devolução da permissão é agendada pelo gate no momento da admissão;
	// nenhum caminho abaixo precisa (nem pode) devolvê-la.
	if err := s.Admission.Acquire(ctx); err != nil {
		log.Warn("not admitted", "error", err)
		s.finish(ctx, log, ev, domain.OutcomeFailed, start)
		return "", err
	}
	ev.Waited = s.now().Sub(start)
	log.Debug("admitted", "waited", ev.Waited)

	token, err := s.Tokens.Token(ctx)
	if err != nil {
		// cancelamento do chamador não é falha da credencial
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			err = &domain.NetworkError{Err: err}
		} else {
			err = &domain.TokenError{Err: err}
		}
		log.Warn("cannot obtain token", "error", err)
		s.finish(ctx, log, ev, domain.OutcomeFailed, start)
		return "", err
	}

	resp, err := s.Transport.Do(ctx, domain.Request{
		Method: http.MethodPost,
		URL:    s.sendURL(env.ProductGroup),
		Header: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + token,
		},
		Body: body,
	})
	if err != nil {
		err = &domain.NetworkError{Err: err}
		log.Warn("transport failure", "error", err)
		s.finish(ctx, log, ev, domain.OutcomeFailed, start)
		return "", err
	}
	ev.StatusCode = resp.StatusCode

	if !acceptedStatus[resp.StatusCode] {
		err := &domain.APIError{StatusCode: resp.StatusCode, Body: string(resp.Body), Truncated: resp.Truncated}
		log.Warn("document rejected by api", "status", resp.StatusCode)
		s.finish(ctx, log, ev, domain.OutcomeRejected, start)
		return "", err
	}

	var out sendResult
	if err := s.Encoder.Decode(resp.Body, &out); err != nil {
		err = &domain.EncodingError{Op: domain.OpDecodeResponse, Err: err}
		log.Error("unreadable api response", "status", resp.StatusCode, "error", err)
		s.finish(ctx, log, ev, domain.OutcomeFailed, start)
		return "", err
	}
	if out.Value == nil {
		err := &domain.EncodingError{Op: domain.OpDecodeResponse, Err: errMissingValue}
		log.Error("api response without value", "status", resp.StatusCode)
		s.finish(ctx, log, ev, domain.OutcomeFailed, start)
		return "", err
	}

	s.finish(ctx, log, ev, domain.OutcomeAccepted, start)
	log.Debug("document accepted", "status", resp.StatusCode, "value", *out.Value)
	return *out.Value, nil
}

func (s SubmitService) sendURL(pg string) string {
	return strings.TrimRight(s.BaseURL, "/") + SendPath + "?pg=" + url.QueryEscape(pg)
}

// finish registra o evento (best-effort). O ctx pode já estar cancelado,
// por isso a gravação não herda o cancelamento.
func (s SubmitService) finish(ctx context.Context, log hclog.Logger, ev domain.SubmissionEvent, outcome domain.Outcome, start time.Time) {
	if s.Stats == nil {
		return
	}
	ev.Outcome = outcome
	ev.Took = s.now().Sub(start)
	if err := s.Stats.Record(context.WithoutCancel(ctx), ev); err != nil {
		log.Warn("stats record failed", "error", err)
	}
}

func (s SubmitService) logger() hclog.Logger {
	if s.Logger == nil {
		return hclog.NewNullLogger()
	}
	return s.Logger
}

func (s SubmitService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s SubmitService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
