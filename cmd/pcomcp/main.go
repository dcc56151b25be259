// Command pcomcp runs the Planning Center MCP server, exposing the
// people directory and check-in attendance reports as tools over stdio
// or streamable HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rusq/osenv/v2"

	"github.com/easthillchurch/pcomcp/internal/checkins"
	"github.com/easthillchurch/pcomcp/internal/mcp"
	"github.com/easthillchurch/pcomcp/internal/pco"
	"github.com/easthillchurch/pcomcp/internal/people"
)

const (
	appIDEnv  = "PLANNING_CENTER_CLIENT_ID"
	secretEnv = "PLANNING_CENTER_SECRET"
)

var build = "dev"

// secrets defines the names of the supported secret files that we load our
// secrets from.  Inexperienced windows users might have bad experience trying
// to create .env file with the notepad as it will battle for having the
// "txt" extension.  Let it have it.
var secrets = []string{".env", ".env.txt", "secrets.txt"}

// params is the command line parameters.
type params struct {
	appID  string
	secret string

	eventID  string
	services string
	httpAddr string

	traceFile    string
	jsonHandler  bool
	printVersion bool
	verbose      bool
}

func main() {
	loadSecrets(secrets)

	p, err := parseCmdLine(os.Args[1:])
	if err != nil {
		slog.Error("invalid parameters", "error", err)
		os.Exit(1)
	}
	if p.printVersion {
		fmt.Println(build)
		return
	}

	lg := initLog(p.jsonHandler, p.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, lg, p); err != nil {
		lg.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *slog.Logger, p params) error {
	stopTrace := initTrace(lg, p.traceFile)
	defer stopTrace()

	client := pco.New(p.appID, p.secret,
		pco.WithLogger(lg),
		pco.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	ppl := people.New(client, lg)
	chk := checkins.New(client,
		checkins.WithEventID(p.eventID),
		checkins.WithServiceNames(splitList(p.services)),
		checkins.WithLogger(lg),
	)

	srv := mcp.New(client, ppl, chk, mcp.WithLogger(lg))
	if p.httpAddr != "" {
		return srv.ServeHTTP(ctx, p.httpAddr)
	}
	return srv.ServeStdio(ctx)
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// loadSecrets load secrets from the files in secrets slice.
func loadSecrets(files []string) {
	for _, f := range files {
		godotenv.Load(f)
	}
}

// parseCmdLine parses the command line arguments.
func parseCmdLine(args []string) (params, error) {
	fs := flag.NewFlagSet("pcomcp", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			flag.CommandLine.Output(),
			"Planning Center MCP server, %s\n"+
				"Serves people directory and check-in attendance tools over the\n"+
				"Model Context Protocol.  Runs on stdio unless -http is given.\n\n"+
				"Usage:  %s [flags]\n\n",
			build, filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}

	var p params
	fs.StringVar(&p.appID, "app-id", osenv.Secret(appIDEnv, ""), "Planning Center application `ID` (environment: "+appIDEnv+")")
	fs.StringVar(&p.secret, "secret", osenv.Secret(secretEnv, ""), "Planning Center application `secret` (environment: "+secretEnv+")")

	fs.StringVar(&p.eventID, "event-id", osenv.Value("PCO_EVENT_ID", ""), "check-in `event_id` for attendance reports (environment: PCO_EVENT_ID)")
	fs.StringVar(&p.services, "services", osenv.Value("PCO_SERVICE_NAMES", ""), "comma-separated `names` of the recognised service times (environment: PCO_SERVICE_NAMES)")
	fs.StringVar(&p.httpAddr, "http", osenv.Value("PCOMCP_HTTP_ADDR", ""), "serve over streamable HTTP on `addr` instead of stdio (environment: PCOMCP_HTTP_ADDR)")

	fs.StringVar(&p.traceFile, "trace", os.Getenv("TRACE_FILE"), "trace `file` (optional)")
	fs.BoolVar(&p.jsonHandler, "log-json", false, "log in JSON format")
	fs.BoolVar(&p.printVersion, "V", false, "print version and exit")
	fs.BoolVar(&p.verbose, "v", false, "verbose messages")

	if err := fs.Parse(args); err != nil {
		return p, err
	}
	return p, nil
}
