package application

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"crpt-gateway/client/crpt/domain"
	"crpt-gateway/client/crpt/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu     sync.Mutex
	status int
	body   string
	cut    bool
	err    error
	reqs   []domain.Request
}

func (f *fakeTransport) Do(_ context.Context, req domain.Request) (domain.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return domain.Response{}, f.err
	}
	return domain.Response{StatusCode: f.status, Body: []byte(f.body), Truncated: f.cut}, nil
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func newSubmitService(tr domain.Transport, gate domain.PermitGate, stats domain.StatsStore) SubmitService {
	enc := infra.JSONEncoder{}
	return SubmitService{
		Preparer:  PrepareService{Encoder: enc},
		Admission: AdmissionService{Gate: gate},
		Transport: tr,
		Tokens:    infra.StaticTokens("test-token"),
		Encoder:   enc,
		BaseURL:   "https://crpt.example/api/v3/",
		Stats:     stats,
		NewID:     func() string { return "sub-1" },
	}
}

func TestSubmit_ReturnsValueOnCreated(t *testing.T) {
	tr := &fakeTransport{status: http.StatusCreated, body: `{"value":"abc123"}`}
	svc := newSubmitService(tr, &countingGate{}, nil)

	got, err := svc.Submit(context.Background(), validDocument(), "sig", domain.Milk)
	require.NoError(t, err)
	assert.Equal(t, "abc123", got)

	require.Equal(t, 1, tr.calls())
	req := tr.reqs[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "https://crpt.example/api/v3/lk/documents/send?pg=milk", req.URL)
	assert.Equal(t, "application/json", req.Header["Content-Type"])
	assert.Equal(t, "Bearer test-token", req.Header["Authorization"])

	var env domain.Envelope
	require.NoError(t, infra.JSONEncoder{}.Decode(req.Body, &env))
	assert.Equal(t, "MANUAL", env.DocumentFormat)
	assert.Equal(t, "milk", env.ProductGroup)
	assert.Equal(t, "LP_INTRODUCE_GOODS", env.Type)
	assert.Equal(t, "sig", env.Signature)
	_, err = base64.StdEncoding.DecodeString(env.ProductDocument)
	assert.NoError(t, err)
}

func TestSubmit_AcceptsOkAndAccepted(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusAccepted} {
		tr := &fakeTransport{status: status, body: `{"value":"v"}`}
		got, err := newSubmitService(tr, nil, nil).Submit(context.Background(), validDocument(), "sig", domain.Shoes)
		require.NoError(t, err, "status %d", status)
		assert.Equal(t, "v", got)
	}
}

func TestSubmit_ServerErrorIsApiRejection(t *testing.T) {
	tr := &fakeTransport{status: http.StatusInternalServerError, body: "server error"}
	stats := infra.NewMemoryStatsStore()
	svc := newSubmitService(tr, &countingGate{}, stats)

	_, err := svc.Submit(context.Background(), validDocument(), "sig", domain.Milk)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAPIRejection)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "server error", apiErr.Body)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.False(t, apiErr.Truncated)

	assert.Equal(t, int64(1), stats.Total().Rejected)
	assert.Equal(t, 500, stats.Last().StatusCode)
}

func TestSubmit_RejectionCarriesTruncationMark(t *testing.T) {
	tr := &fakeTransport{status: http.StatusBadRequest, body: "partial", cut: true}
	_, err := newSubmitService(tr, nil, nil).Submit(context.Background(), validDocument(), "sig", domain.Milk)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Truncated)
	assert.Equal(t, "partial", apiErr.Body)
}

func TestSubmit_InvalidDocumentNeverTouchesGateOrNetwork(t *testing.T) {
	tr := &fakeTransport{status: http.StatusOK, body: `{"value":"x"}`}
	gate := &countingGate{}
	stats := infra.NewMemoryStatsStore()
	doc := validDocument()
	doc.Products[0].UitCode = ""
	doc.Products[1].UituCode = ""

	_, err := newSubmitService(tr, gate, stats).Submit(context.Background(), doc, "sig", domain.Milk)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, gate.acquired)
	assert.Equal(t, 0, tr.calls())
	assert.Equal(t, int64(1), stats.Total().Invalid)
}

func TestSubmit_NetworkFailureKeepsCause(t *testing.T) {
	tr := &fakeTransport{err: context.DeadlineExceeded}
	_, err := newSubmitService(tr, &countingGate{}, nil).Submit(context.Background(), validDocument(), "sig", domain.Milk)

	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrAPIRejection)
}

func TestSubmit_TokenFailure(t *testing.T) {
	tr := &fakeTransport{status: http.StatusOK, body: `{"value":"x"}`}
	svc := newSubmitService(tr, &countingGate{}, nil)
	svc.Tokens = domain.TokenFunc(func(context.Context) (string, error) { return "", errors.New("vault sealed") })

	_, err := svc.Submit(context.Background(), validDocument(), "sig", domain.Milk)
	assert.ErrorIs(t, err, domain.ErrToken)
	assert.Equal(t, 0, tr.calls())
}

func TestSubmit_CancelWhileFetchingTokenIsNetwork(t *testing.T) {
	tr := &fakeTransport{status: http.StatusOK, body: `{"value":"x"}`}
	svc := newSubmitService(tr, &countingGate{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	svc.Tokens = domain.TokenFunc(func(ctx context.Context) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	_, err := svc.Submit(ctx, validDocument(), "sig", domain.Milk)
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrToken)
	assert.Equal(t, 0, tr.calls())
}

func TestSubmit_UnreadableSuccessBody(t *testing.T) {
	for _, body := range []string{"not json", `{"other":"x"}`} {
		tr := &fakeTransport{status: http.StatusOK, body: body}
		_, err := newSubmitService(tr, nil, nil).Submit(context.Background(), validDocument(), "sig", domain.Milk)
		assert.ErrorIs(t, err, domain.ErrEncoding, "body %q", body)
		assert.ErrorIs(t, err, domain.ErrBadResponse, "body %q", body)
	}
}

func TestSubmit_CancelWhileWaitingForPermit(t *testing.T) {
	tr := &fakeTransport{status: http.StatusOK, body: `{"value":"x"}`}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newSubmitService(tr, blockingGate{}, nil).Submit(ctx, validDocument(), "sig", domain.Milk)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, tr.calls())
}

func TestSubmit_PermitsReturnAfterWindowWhateverTheOutcome(t *testing.T) {
	const limit = 4
	gate, err := infra.NewWindowGate(time.Millisecond, limit, infra.WithTimeDelay(200))
	require.NoError(t, err)

	outcomes := []*fakeTransport{
		{status: http.StatusCreated, body: `{"value":"ok"}`},
		{status: http.StatusBadRequest, body: "bad"},
		{err: errors.New("connection refused")},
		{status: http.StatusOK, body: "garbage"},
	}
	for _, tr := range outcomes {
		_, _ = newSubmitService(tr, gate, nil).Submit(context.Background(), validDocument(), "sig", domain.Milk)
	}
	assert.Equal(t, 0, gate.Available())

	require.Eventually(t, func() bool { return gate.Available() == limit }, 2*time.Second, 10*time.Millisecond)
}
