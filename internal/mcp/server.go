// Copyright (c) 2025-2026 East Hill Church Tech Team.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mcp

// In this file: MCP server construction, transport management and the
// tool argument/result helpers.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/easthillchurch/pcomcp/internal/checkins"
	"github.com/easthillchurch/pcomcp/internal/pco"
	"github.com/easthillchurch/pcomcp/internal/people"
)

const (
	serverName    = "pcomcp"
	serverVersion = "1.0.0"
)

// Querier is the raw client surface used by the generic resource query
// tool.
type Querier interface {
	Get(ctx context.Context, url string, p *pco.Params) (*pco.Document, error)
	GetAll(ctx context.Context, url string, p *pco.Params) (*pco.Document, error)
}

// Server wraps an MCP server and the domain services behind its tools.
type Server struct {
	mcp    *mcpsrv.MCPServer
	client Querier
	people *people.Service
	chk    *checkins.Service
	logger *slog.Logger
}

// Option is the Server constructor option.
type Option func(*Server)

// WithLogger sets the server logger.  A nil logger falls back to
// slog.Default().
func WithLogger(lg *slog.Logger) Option {
	return func(s *Server) {
		if lg != nil {
			s.logger = lg
		}
	}
}

// New creates an MCP server over the given client and domain services.
// The server is populated with all available tools but does not start
// listening until one of the Serve* methods is called.
func New(cl Querier, ppl *people.Service, chk *checkins.Service, opt ...Option) *Server {
	s := &Server{
		client: cl,
		people: ppl,
		chk:    chk,
		logger: slog.Default(),
	}
	for _, o := range opt {
		o(s)
	}

	mcpServer := mcpsrv.NewMCPServer(
		serverName,
		serverVersion,
		mcpsrv.WithInstructions(instructions()),
	)
	for _, t := range s.tools() {
		mcpServer.AddTool(t.Tool, t.Handler)
	}
	s.mcp = mcpServer
	return s
}

// instructions returns the server instructions that describe the backend
// to the connecting agent.
func instructions() string {
	return `You are connected to a Planning Center MCP server.

Available tools query the church management backend (read-only):
- Search the people directory and fetch individual records
- Fetch contact details (phone numbers, addresses, emails) for a person
- List background checks, optionally with person details
- Report check-in attendance for a date: per-service totals or the full
  session detail with every service time and headcount
- Run a generic filtered query against any People or Check-Ins resource

Dates are ISO format (YYYY-MM-DD).  All data is fetched live from the
Planning Center API; no writes are ever performed.`
}

// ServeStdio runs the MCP server over stdin/stdout until ctx is cancelled.
// This is the standard transport used by local agent integrations.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := mcpsrv.NewStdioServer(s.mcp)
	s.logger.InfoContext(ctx, "mcp server listening on stdio")
	if err := srv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("mcp stdio server error: %w", err)
	}
	return nil
}

// ServeHTTP runs the MCP server as a streamable HTTP server on addr until
// ctx is cancelled.  addr should be a host:port string such as
// "127.0.0.1:8483".  The MCP endpoint is mounted on /mcp next to a
// /healthcheck.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	streamSrv := mcpsrv.NewStreamableHTTPServer(s.mcp)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/healthcheck", healthcheck)
	r.Handle("/mcp", streamSrv)

	httpSrv := &http.Server{Addr: addr, Handler: r}

	s.logger.InfoContext(ctx, "mcp server listening on http", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("mcp http server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "mcp server shutting down")
		if err := httpSrv.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("mcp http server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func healthcheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// tools returns all MCP tools that this server exposes.
func (s *Server) tools() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		s.toolSearchPeople(),
		s.toolGetPersonDetails(),
		s.toolGetPersonContactInfo(),
		s.toolSearchPeopleWithContactInfo(),
		s.toolListApprovedBackgroundChecks(),
		s.toolListBackgroundChecks(),
		s.toolGetAttendanceForDate(),
		s.toolGetAttendanceDetailsForDate(),
		s.toolListEventTimes(),
		s.toolQueryResource(),
	}
}

// AddTool adds an additional tool to the MCP server.  It can be called
// after New but before serving starts.
func (s *Server) AddTool(tool mcpsrv.ServerTool) {
	s.mcp.AddTool(tool.Tool, tool.Handler)
}

// errorShape is the uniform failure payload of every tool.
type errorShape struct {
	Error string `json:"error"`
}

// resultJSON is a helper that serialises v to JSON and returns a
// CallToolResult.
func resultJSON(v any) (*mcplib.CallToolResult, error) {
	return mcplib.NewToolResultJSON(v)
}

// resultFailf wraps a formatted message in the {"error": ...} payload with
// the IsError flag set.
func resultFailf(format string, a ...any) *mcplib.CallToolResult {
	msg := fmt.Sprintf(format, a...)
	res, err := mcplib.NewToolResultJSON(errorShape{Error: msg})
	if err != nil {
		// Serialising a one-field struct cannot realistically fail, but
		// the caller still gets the message if it somehow does.
		return &mcplib.CallToolResult{
			Content: []mcplib.Content{mcplib.NewTextContent(msg)},
			IsError: true,
		}
	}
	res.IsError = true
	return res
}

// stringArg extracts a named string argument from a tool call request.
// Returns ("", false) if the argument is absent or not a string.
func stringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	args := req.GetArguments()
	if args == nil {
		return "", false
	}
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// intArg extracts a named int argument from a tool call request.  The MCP
// protocol serialises numbers as float64, so we convert accordingly.
func intArg(req mcplib.CallToolRequest, name string, defaultVal int) int {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return defaultVal
}

// boolArg extracts a named bool argument from a tool call request.
func boolArg(req mcplib.CallToolRequest, name string, defaultVal bool) bool {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	b, ok := v.(bool)
	if !ok {
		return defaultVal
	}
	return b
}

// mapArg extracts a named object argument from a tool call request.
func mapArg(req mcplib.CallToolRequest, name string) map[string]any {
	args := req.GetArguments()
	if args == nil {
		return nil
	}
	m, _ := args[name].(map[string]any)
	return m
}
