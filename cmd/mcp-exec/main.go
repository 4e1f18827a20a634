package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rhobs/mcp-exec/pkg/config"
	"github.com/rhobs/mcp-exec/pkg/executor"
	"github.com/rhobs/mcp-exec/pkg/mcp"
	"github.com/rhobs/mcp-exec/pkg/spec"
)

const name = "mcp-exec"

func main() {
	program, err := parseArgs(os.Args)
	if err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Configure slog with specified log level
	configureLogging(cfg)

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mcpServer, err := mcp.NewMCPServer(mcp.ExecMCPOptions{
		Program: program,
		Runner: &executor.ExecRunner{
			Dir: cfg.WorkDir,
			Env: cfg.Env,
		},
		Timeout:      timeout,
		Name:         cfg.Name,
		Version:      cfg.Version,
		Instructions: cfg.Instructions,
		Registerer:   registry,
	})
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	slog.Info("Starting server",
		"command", program.BaseCommand,
		"tools", len(program.Tools),
		"multi_tool", program.MultiTool(),
		"extra_args", program.ExtraArgs,
		"timeout", timeout,
	)

	ctx := context.Background()
	if cfg.Listen != "" {
		// HTTP mode
		if err := mcp.Serve(ctx, mcpServer, cfg.Listen, registry); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	} else {
		// Start server on stdio (default mode)
		if err := mcp.ServeStdio(ctx, mcpServer); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}
}

var errUsage = errors.New("insufficient arguments")

// parseArgs compiles the process arguments: the wrapped command followed by its tool declarations.
func parseArgs(args []string) (*spec.Program, error) {
	if len(args) < 2 {
		return nil, errUsage
	}
	return spec.Compile(args[1], args[2:])
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> <description> [--pos-arg 'name desc'] [--flag 'FLAG[=] desc'] [--required-flag 'FLAG[=] desc'] [--extra-args 'args']\n", name)
	fmt.Fprintf(w, "       %s <command> [--extra-args 'args'] --tool 'name desc' [--pos-arg ...] [--flag ...] [--required-flag ...] [--tool ...]\n", name)
}

// configureLogging sets up the slog logger with the configured level and format
func configureLogging(cfg *config.Config) {
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal(err.Error())
	}
	slog.SetDefault(logger)
}
