package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docJSON = `{"doc_id":"d1","participant_inn":"7700000000","reg_date":"2024-06-02","products":[{"uit_code":"0104600000000001","tnved_code":"0401"}]}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestPrepareCommand_PrintsEnvelope(t *testing.T) {
	ui := cli.NewMockUi()
	cmd := &prepareCommand{ui: ui}

	code := cmd.Run([]string{"-file", writeTemp(t, "doc.json", docJSON), "-pg", "MILK", "-signature", "sig"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	var env map[string]string
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(ui.OutputWriter.String())), &env))
	assert.Equal(t, "milk", env["product_group"])
	assert.Equal(t, "MANUAL", env["document_format"])
	assert.Equal(t, "sig", env["signature"])
}

func TestPrepareCommand_ReportsInvalidProduct(t *testing.T) {
	ui := cli.NewMockUi()
	bad := `{"doc_id":"d1","products":[{"tnved_code":"0401"}]}`

	code := (&prepareCommand{ui: ui}).Run([]string{"-file", writeTemp(t, "doc.json", bad), "-pg", "milk"})
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "products[0]")
}

func TestPrepareCommand_UnknownGroup(t *testing.T) {
	ui := cli.NewMockUi()
	code := (&prepareCommand{ui: ui}).Run([]string{"-file", writeTemp(t, "doc.json", docJSON), "-pg", "furniture"})
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "unknown product group")
}

func TestSendCommand_PrintsValue(t *testing.T) {
	var auth, pg string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		pg = r.URL.Query().Get("pg")
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"value":"abc123"}`)
	}))
	defer srv.Close()

	t.Setenv("CRPT_BASE_URL", srv.URL)
	t.Setenv("CRPT_TOKEN", "tok")

	ui := cli.NewMockUi()
	cmd := &sendCommand{ui: ui, log: hclog.NewNullLogger()}
	code := cmd.Run([]string{
		"-file", writeTemp(t, "doc.json", docJSON),
		"-pg", "milk",
		"-signature-file", writeTemp(t, "doc.sig", "c2ln\n"),
	})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Equal(t, "abc123", strings.TrimSpace(ui.OutputWriter.String()))
	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "milk", pg)
}

func TestSendCommand_ApiRejectionExitCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "server error")
	}))
	defer srv.Close()

	t.Setenv("CRPT_BASE_URL", srv.URL)
	t.Setenv("CRPT_TOKEN", "tok")

	ui := cli.NewMockUi()
	code := (&sendCommand{ui: ui, log: hclog.NewNullLogger()}).Run([]string{"-file", writeTemp(t, "doc.json", docJSON), "-pg", "milk"})
	assert.Equal(t, 2, code)
	assert.Contains(t, ui.ErrorWriter.String(), "server error")
}

func TestCommands_AreRegistered(t *testing.T) {
	cmds := commands(cli.NewMockUi(), hclog.NewNullLogger())
	for _, name := range []string{"send", "prepare"} {
		f, ok := cmds[name]
		require.True(t, ok, name)
		c, err := f()
		require.NoError(t, err)
		assert.NotEmpty(t, c.Synopsis())
	}
}
