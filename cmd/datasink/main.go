// Command datasink is the entrypoint of the data access service: it
// runs the server and talks to a running one for administration and
// data manipulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
)

const (
	defaultServerAddr  = "localhost:50051"
	defaultDatabaseURL = "sqlite://datasink.db"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <command> [command flags]

Commands:
  serve           run the server
  status          show server and connection status
  add-database    register a database connection on a running server
  create-table    create a table
  drop-table      drop a table
  insert          insert one row
  update          update rows matching a condition
  delete          delete rows matching a condition
  query           run a query and print the results
  apply-schema    apply a TOML schema file to a running server

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

// envOr returns the environment variable value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	var (
		addr    = flag.String("addr", envOr("DATASINK_ADDR", defaultServerAddr), "server address")
		verbose = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "serve":
		err = runServe(ctx, args, log)
	case "status":
		err = runStatus(ctx, *addr, args)
	case "add-database":
		err = runAddDatabase(ctx, *addr, args)
	case "create-table":
		err = runCreateTable(ctx, *addr, args)
	case "drop-table":
		err = runDropTable(ctx, *addr, args)
	case "insert":
		err = runInsert(ctx, *addr, args)
	case "update":
		err = runUpdate(ctx, *addr, args)
	case "delete":
		err = runDelete(ctx, *addr, args)
	case "query":
		err = runQuery(ctx, *addr, args)
	case "apply-schema":
		err = runApplySchema(ctx, *addr, args, log)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}
