package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crpt-gateway/client/crpt"
	"crpt-gateway/client/crpt/application"
	"crpt-gateway/client/crpt/domain"
	"crpt-gateway/client/crpt/infra"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// documentFlags são as flags comuns a send e prepare.
type documentFlags struct {
	file          string
	group         string
	signature     string
	signatureFile string
}

func (f *documentFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.file, "file", "", "Path to the document JSON.")
	fs.StringVar(&f.group, "pg", "", "Product group: "+strings.Join(domain.ProductGroupNames(), ", ")+".")
	fs.StringVar(&f.signature, "signature", "", "Detached signature (base64).")
	fs.StringVar(&f.signatureFile, "signature-file", "", "Read the signature from this file.")
}

func (f *documentFlags) load() (*domain.Document, string, domain.ProductGroup, error) {
	if f.file == "" {
		return nil, "", 0, errors.New("-file is required")
	}
	pg, ok := domain.ParseProductGroup(f.group)
	if !ok {
		return nil, "", 0, fmt.Errorf("unknown product group %q", f.group)
	}

	raw, err := os.ReadFile(f.file)
	if err != nil {
		return nil, "", 0, err
	}
	var doc domain.Document
	if err := (infra.JSONEncoder{}).Decode(raw, &doc); err != nil {
		return nil, "", 0, fmt.Errorf("parse %s: %w", f.file, err)
	}

	sig := f.signature
	if f.signatureFile != "" {
		b, err := os.ReadFile(f.signatureFile)
		if err != nil {
			return nil, "", 0, err
		}
		sig = strings.TrimSpace(string(b))
	}
	return &doc, sig, pg, nil
}

type prepareCommand struct {
	ui cli.Ui
}

func (c *prepareCommand) Synopsis() string { return "Validate a document and print the envelope" }

func (c *prepareCommand) Help() string {
	return `Usage: crpt-submit prepare -file doc.json -pg milk [-signature-file doc.sig]

  Validates the document and prints the JSON envelope that would be sent.
  Nothing is sent and no quota is used.`
}

func (c *prepareCommand) Run(args []string) int {
	var df documentFlags
	fs := flag.NewFlagSet("prepare", flag.ContinueOnError)
	fs.Usage = func() { c.ui.Output(c.Help()) }
	df.register(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	doc, sig, pg, err := df.load()
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}

	enc := infra.JSONEncoder{}
	env, err := application.PrepareService{Encoder: enc}.Prepare(doc, sig, pg)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	out, err := enc.Encode(env)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	c.ui.Output(string(out))
	return 0
}

type sendCommand struct {
	ui  cli.Ui
	log hclog.Logger
}

func (c *sendCommand) Synopsis() string { return "Send a document to the CRPT API" }

func (c *sendCommand) Help() string {
	return `Usage: crpt-submit send -file doc.json -pg milk -signature-file doc.sig

  Sends the document and prints the identifier returned by the API.

  Environment:
    CRPT_TOKEN      Bearer token (required)
    CRPT_BASE_URL   API base URL (default ` + crpt.DefaultBaseURL + `)`
}

func (c *sendCommand) Run(args []string) int {
	var df documentFlags
	var timeout time.Duration
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.Usage = func() { c.ui.Output(c.Help()) }
	df.register(fs)
	fs.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout.")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	doc, sig, pg, err := df.load()
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}

	client, err := crpt.NewClient(crpt.Options{
		BaseURL:      os.Getenv("CRPT_BASE_URL"),
		TimeUnit:     time.Second,
		RequestLimit: 1,
		Tokens:       infra.StaticTokens(os.Getenv("CRPT_TOKEN")),
		HTTPTimeout:  timeout,
		Logger:       c.log,
	})
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	value, err := client.CreateDocument(ctx, doc, sig, pg)
	if err != nil {
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			c.ui.Error(fmt.Sprintf("rejected with status %d:\n%s", apiErr.StatusCode, apiErr.Body))
			return 2
		}
		c.ui.Error(err.Error())
		return 1
	}
	c.ui.Output(value)
	return 0
}
