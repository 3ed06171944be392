// crpt-submit envia (ou só prepara) um documento a partir de um arquivo JSON.
//
//	crpt-submit prepare -file doc.json -pg milk -signature-file doc.sig
//	CRPT_TOKEN=... crpt-submit send -file doc.json -pg milk -signature-file doc.sig
package main

import (
	"bufio"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	log := hclog.New(&hclog.LoggerOptions{
		Name:   "crpt-submit",
		Level:  hclog.LevelFromString(os.Getenv("LOG_LEVEL")),
		Output: os.Stderr,
	})

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(os.Stdin),
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := &cli.CLI{
		Name:     "crpt-submit",
		Args:     args[1:],
		Commands: commands(ui, log),
	}

	exitCode, err := c.Run()
	if err != nil {
		log.Error("cli error", "error", err)
		return 1
	}
	return exitCode
}

func commands(ui cli.Ui, log hclog.Logger) map[string]cli.CommandFactory {
	return map[string]cli.CommandFactory{
		"send": func() (cli.Command, error) {
			return &sendCommand{ui: ui, log: log}, nil
		},
		"prepare": func() (cli.Command, error) {
			return &prepareCommand{ui: ui}, nil
		},
	}
}
