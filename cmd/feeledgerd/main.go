// Command feeledgerd runs the fee ledger as an ABCI application next to a
// tendermint node.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	feeledgerd "github.com/iov-one/feeledger/cmd/feeledgerd/app"
	"github.com/iov-one/feeledger/commands/server"
	"github.com/iov-one/feeledger/weave"
	"github.com/tendermint/tendermint/libs/log"
)

const usage = `feeledgerd <command> [flags]

Upgradeable fee token ledger node.

Commands:
  init      write the ledger genesis into <home>/config/genesis.json
  start     run the ABCI server
  version   print the build version
  help      print this message

Flags:
`

var (
	home     = flag.String("home", filepath.Join(os.ExpandEnv("$HOME"), ".feeledger"), "directory to store files under")
	logLevel = flag.String("log_level", "info", "log level: debug, info, error or none")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	level, err := log.AllowLevel(*logLevel)
	if err != nil {
		return err
	}
	logger := log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stdout)), level).
		With("module", "feeledger")

	switch cmd, rest := args[0], args[1:]; cmd {
	case "init":
		return server.InitCmd(feeledgerd.GenInitOptions, logger, *home, rest)
	case "start":
		return server.StartCmd(feeledgerd.GenerateApp, logger, *home, rest)
	case "version":
		fmt.Println(weave.Version())
		return nil
	case "help":
		flag.Usage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}
