package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rhobs/mcp-exec/pkg/command"
	"github.com/rhobs/mcp-exec/pkg/executor"
	"github.com/rhobs/mcp-exec/pkg/spec"
	"github.com/rhobs/mcp-exec/pkg/tooldef"
)

// ExecMCPOptions contains configuration options for the MCP server
type ExecMCPOptions struct {
	Program      *spec.Program
	Runner       executor.Runner
	Timeout      time.Duration
	Name         string
	Version      string
	Instructions string
	// Registerer receives the tool call metrics; nil disables registration.
	Registerer prometheus.Registerer
}

const (
	mcpEndpoint            = "/mcp"
	healthEndpoint         = "/health"
	metricsEndpoint        = "/metrics"
	defaultServerName      = "mcp-exec"
	defaultServerVersion   = "1.0.0"
	defaultShutdownTimeout = 10 * time.Second
)

// Server is the MCP server of a compiled program. Its transports route tool
// calls for undeclared names to the dispatcher instead of the MCP library.
type Server struct {
	mcpServer  *server.MCPServer
	dispatcher *Dispatcher
}

func NewMCPServer(opts ExecMCPOptions) (*Server, error) {
	if opts.Program == nil {
		return nil, errors.New("no program to serve")
	}
	if opts.Runner == nil {
		opts.Runner = &executor.ExecRunner{}
	}

	dispatcher, err := NewDispatcher(opts.Program, opts.Runner, opts.Timeout, NewMetrics(opts.Registerer))
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = defaultServerName
	}
	version := opts.Version
	if version == "" {
		version = defaultServerVersion
	}
	instructions := opts.Instructions
	if instructions == "" {
		instructions = DefaultInstructions(opts.Program)
	}

	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithLogging(),
		server.WithRecovery(),
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
	)

	SetupTools(mcpServer, opts.Program, dispatcher)

	return &Server{mcpServer: mcpServer, dispatcher: dispatcher}, nil
}

// SetupTools registers every tool of program, all served by dispatcher.
func SetupTools(mcpServer *server.MCPServer, program *spec.Program, dispatcher *Dispatcher) {
	for _, def := range tooldef.FromProgram(program) {
		mcpServer.AddTool(def.ToMCPTool(), dispatcher.Handle)
		slog.Info("Registered tool", "tool", def.Name, "params", len(def.Params))
	}
}

// DefaultInstructions describes the wrapped command to the client.
func DefaultInstructions(program *spec.Program) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Each tool runs the `%s` command line program once and returns its output.\n", program.BaseCommand)
	sb.WriteString("Arguments are passed to the program literally; no shell is involved.\n\n")
	sb.WriteString("## Tools\n\n")
	for i := range program.Tools {
		tool := &program.Tools[i]
		fmt.Fprintf(&sb, "- **%s**: `%s`\n", tool.Name, strings.Join(command.Template(program, tool), " "))
	}
	return sb.String()
}

// ServeStdio serves s on stdin/stdout until the input closes or a termination signal arrives.
func ServeStdio(ctx context.Context, s *Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := s.serveStdio(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		slog.Info("Stdio server stopped")
		return nil
	}
	return err
}

func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := &syncWriter{w: out}
	forwardReader, forwardWriter := io.Pipe()

	routed := make(chan struct{})
	go func() {
		defer close(routed)
		s.routeStdio(ctx, in, forwardWriter, writer)
	}()

	stdioServer := server.NewStdioServer(s.mcpServer)
	stdioServer.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	err := stdioServer.Listen(ctx, forwardReader, writer)
	_ = forwardReader.Close()
	if err == nil {
		// a clean return means the router closed the pipe at the end of the input
		<-routed
	}
	return err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Incoming request", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		slog.Debug("Request headers", "headers", r.Header)
		if r.ContentLength > 0 {
			slog.Info("Request content length", "content_length", r.ContentLength)
		}
		next.ServeHTTP(w, r)
	})
}

// NewHTTPHandler returns the HTTP routes of the server: the stateless streamable
// MCP endpoint, a health check and, when gatherer is set, the metrics endpoint.
func NewHTTPHandler(s *Server, httpServer *http.Server, gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()

	streamableHTTPServer := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithStreamableHTTPServer(httpServer),
		server.WithStateLess(true),
	)
	mcpHandler := s.routeHTTP(streamableHTTPServer)
	mux.Handle(mcpEndpoint, mcpHandler)

	mux.Handle("/", mcpHandler)

	mux.HandleFunc(healthEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if gatherer != nil {
		mux.Handle(metricsEndpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return loggingMiddleware(mux)
}

func Serve(ctx context.Context, s *Server, listenAddr string, gatherer prometheus.Gatherer) error {
	httpServer := &http.Server{
		Addr:              listenAddr,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer.Handler = NewHTTPHandler(s, httpServer, gatherer)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server starting", "listen_addr", listenAddr, "mcp_endpoint", mcpEndpoint)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Warn("Initiating graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer shutdownCancel()

		slog.Info("Shutting down HTTP server gracefully")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
			return err
		}

		slog.Info("HTTP server shutdown complete")
		return nil
	})

	return g.Wait()
}
