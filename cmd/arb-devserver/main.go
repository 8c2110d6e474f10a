// arb-devserver runs the in-memory stub of the Arborter service for local
// development: real signature verification, fixture configuration, no
// matching engine.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arborter/arborter-go/arb/signing"
	"github.com/arborter/arborter-go/internal/devserver"
	"github.com/arborter/arborter-go/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	chainID := flag.Uint64("chain-id", signing.DefaultChainID, "chain id for the signing domain")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log, err := logger.Init(logger.Config{Level: *logLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	srv := devserver.New(*chainID, devserver.Fixture())
	log.Infof("arb-devserver listening on %s (chain id %d)", *addr, *chainID)
	if err := srv.Router().Run(*addr); err != nil {
		log.Fatal(err)
	}
}
