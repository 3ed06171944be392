package crpt

import (
	"context"
	"time"

	"crpt-gateway/client/crpt/application"
	"crpt-gateway/client/crpt/domain"
	"crpt-gateway/client/crpt/infra"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-hclog"
)

const DefaultBaseURL = "https://ismp.crpt.ru/api/v3"

type Options struct {
	// BaseURL padrão: DefaultBaseURL.
	BaseURL string

	// Cota: no máximo RequestLimit admissões a cada TimeDelay*TimeUnit.
	// TimeDelay padrão: 1.
	TimeUnit     time.Duration
	RequestLimit int
	TimeDelay    int64

	// AcquireTimeout limita a espera pelo gate (0 = espera até o ctx do chamador).
	AcquireTimeout time.Duration

	Tokens    domain.TokenProvider
	Transport domain.Transport // padrão: infra.HTTPTransport com HTTPTimeout
	Encoder   domain.Encoder   // padrão: infra.JSONEncoder

	HTTPTimeout time.Duration

	Stats     domain.StatsStore
	Logger    hclog.Logger
	Scheduler domain.Scheduler // padrão: time.AfterFunc
}

// Client é seguro para uso concorrente; o gate é o único ponto de sincronização.
type Client struct {
	gate   *infra.WindowGate
	submit application.SubmitService
}

func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.TimeDelay == 0 {
		opts.TimeDelay = 1
	}
	if opts.Encoder == nil {
		opts.Encoder = infra.JSONEncoder{}
	}
	if opts.Transport == nil {
		opts.Transport = infra.NewHTTPTransport(infra.HTTPTransportConfig{Timeout: opts.HTTPTimeout})
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	err := validation.Errors{
		"baseURL":        validation.Validate(opts.BaseURL, validation.Required, is.URL),
		"tokens":         validation.Validate(opts.Tokens, validation.NotNil),
		"acquireTimeout": validation.Validate(int64(opts.AcquireTimeout), validation.Min(int64(0))),
	}.Filter()
	if err != nil {
		return nil, &domain.ConfigError{Field: "crpt.Options", Reason: err.Error()}
	}

	gateOpts := []infra.WindowGateOption{infra.WithTimeDelay(opts.TimeDelay)}
	if opts.Scheduler != nil {
		gateOpts = append(gateOpts, infra.WithScheduler(opts.Scheduler))
	}
	gate, err := infra.NewWindowGate(opts.TimeUnit, opts.RequestLimit, gateOpts...)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger.Named("crpt")
	logger.Debug("client ready", "base_url", opts.BaseURL, "limit", opts.RequestLimit, "window", gate.Window())

	return &Client{
		gate: gate,
		submit: application.SubmitService{
			Preparer:  application.PrepareService{Encoder: opts.Encoder},
			Admission: application.AdmissionService{Gate: gate, AcquireTimeout: opts.AcquireTimeout},
			Transport: opts.Transport,
			Tokens:    opts.Tokens,
			Encoder:   opts.Encoder,
			BaseURL:   opts.BaseURL,
			Stats:     opts.Stats,
			Logger:    logger,
		},
	}, nil
}

// CreateDocument envia o documento e devolve o identificador atribuído pela API.
func (c *Client) CreateDocument(ctx context.Context, doc *domain.Document, signature string, pg domain.ProductGroup) (string, error) {
	return c.submit.Submit(ctx, doc, signature, pg)
}

// Prepare monta o envelope sem enviar nada e sem consumir permissão (dry-run).
func (c *Client) Prepare(doc *domain.Document, signature string, pg domain.ProductGroup) (domain.Envelope, error) {
	return c.submit.Preparer.Prepare(doc, signature, pg)
}

func (c *Client) Available() int        { return c.gate.Available() }
func (c *Client) Limit() int            { return c.gate.Limit() }
func (c *Client) Window() time.Duration { return c.gate.Window() }
