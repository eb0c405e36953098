// Command eloptcli is the thin outer dispatcher for the call-option
// covenant core: it parses CLI flags into the types the core expects,
// invokes the relevant package, and prints the result as hex or JSON
// to standard output (spec.md §1, "Out of scope: the command-line
// dispatcher").
package main

import (
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	"github.com/lightninglabs/elopt/contract"
	"github.com/lightninglabs/elopt/covenant"
	"github.com/lightninglabs/elopt/finalize"
	"github.com/lightninglabs/elopt/txbuilder"
	"github.com/urfave/cli"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[eloptcli] %v\n", err)
	os.Exit(1)
}

// initLogging wires each package's subsystem logger to a real backend
// writing to stderr, following the teacher's backendLog.Logger(tag)
// convention from cmd/lncli/main.go. Info is the default level, and an
// unrecognized --debuglevel value also falls back to Info.
func initLogging(level string) {
	backend := btclog.NewBackend(os.Stderr)

	loggers := map[string]func(btclog.Logger){
		"CVNT": covenant.UseLogger,
		"CTRT": contract.UseLogger,
		"TXBD": txbuilder.UseLogger,
		"FNLZ": finalize.UseLogger,
	}
	for tag, use := range loggers {
		logger := backend.Logger(tag)
		lvl, ok := btclog.LevelFromString(level)
		if !ok {
			lvl = btclog.LevelInfo
		}
		logger.SetLevel(lvl)
		use(logger)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "eloptcli"
	app.Version = "0.1"
	app.Usage = "construct and finalize call-option covenant transactions"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "path to the elopt YAML configuration file",
		},
		cli.StringFlag{
			Name:  "network",
			Value: "regtest",
			Usage: "regtest or liquid",
		},
		cli.StringFlag{
			Name:  "debuglevel",
			Value: "info",
			Usage: "off|critical|error|warn|info|debug|trace",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		initLogging(ctx.String("debuglevel"))
		return nil
	}
	app.Commands = []cli.Command{
		initConfigCommand,
		createCommand,
		exerciseCommand,
		cancelCommand,
		expiryCommand,
		claimBeneCommand,
		addContractCommand,
		finalizeCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
