package crpt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"crpt-gateway/client/crpt/domain"

	"github.com/hashicorp/go-hclog"
)

// Submitter é o que o handler precisa do Client.
type Submitter interface {
	CreateDocument(ctx context.Context, doc *domain.Document, signature string, pg domain.ProductGroup) (string, error)
}

type gateInfo interface {
	Available() int
	Limit() int
}

type HandlerOptions struct {
	MaxBodyBytes int64
	Logger       hclog.Logger
}

type submitRequest struct {
	Document  *domain.Document `json:"document"`
	Signature string           `json:"signature"`
}

type submitResponse struct {
	Value string `json:"value"`
}

type errorResponse struct {
	Error          string `json:"error"`
	Detail         string `json:"detail,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

// Ordem importa: o primeiro tipo que casar define o status.
var errorStatus = []struct {
	target error
	status int
}{
	{domain.ErrValidation, http.StatusUnprocessableEntity},
	{domain.ErrAPIRejection, http.StatusBadGateway},
	{domain.ErrToken, http.StatusBadGateway},
	{domain.ErrAdmissionTimeout, http.StatusServiceUnavailable},
	{domain.ErrBadResponse, http.StatusBadGateway},
	{domain.ErrEncoding, http.StatusBadRequest},
	{context.Canceled, http.StatusServiceUnavailable},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
	{domain.ErrNetwork, http.StatusGatewayTimeout},
}

func statusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// NewHandler expõe o Submitter como relay HTTP para sistemas internos:
//
//	POST /documents?pg=milk  {"document": {...}, "signature": "..."}  ->  {"value": "..."}
//
// Todos os chamadores dividem a mesma cota do Client.
func NewHandler(s Submitter, opts HandlerOptions) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 8 << 20
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	log := opts.Logger.Named("relay")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /documents", func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
		if err == nil {
			err = json.Unmarshal(body, &req)
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Detail: err.Error()})
			return
		}

		// grupo desconhecido vira ProductGroupUnknown e é rejeitado na validação
		pg, _ := domain.ParseProductGroup(r.URL.Query().Get("pg"))

		value, err := s.CreateDocument(r.Context(), req.Document, req.Signature, pg)
		if gi, ok := s.(gateInfo); ok {
			w.Header().Set("X-Crpt-Permits-Available", strconv.Itoa(gi.Available()))
			w.Header().Set("X-Crpt-Permits-Limit", strconv.Itoa(gi.Limit()))
		}
		if err != nil {
			status := statusFor(err)
			resp := errorResponse{Error: err.Error()}
			var apiErr *domain.APIError
			if errors.As(err, &apiErr) {
				resp = errorResponse{Error: "crpt api rejected the document", Detail: apiErr.Body, UpstreamStatus: apiErr.StatusCode}
			}
			log.Info("submission failed", "status", status, "error", err)
			writeJSON(w, status, resp)
			return
		}

		writeJSON(w, http.StatusCreated, submitResponse{Value: value})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
