package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cyberpodolia/deskwin/internal/mcp"
	"github.com/cyberpodolia/deskwin/internal/store"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskwin mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskwin mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := newFlagSet("mcp serve", os.Stderr, func(w io.Writer) {
		fmt.Fprintln(w, "Usage: deskwin mcp serve [--config PATH]")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Start the MCP server on stdio. Designed to be invoked by MCP clients,")
		fmt.Fprintln(w, "which get tools to read, share, apply and reset stored layouts.")
	})
	configPath := fs.StringP("config", "c", "", "Config file path (default: ~/.config/deskwin/config.yaml)")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	// stdout carries the protocol, so logs only go to the file.
	logs, err := newLogManager(cfg, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logging: %v\n", err)
		return 1
	}
	defer logs.Close()

	kv, err := store.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open layout store: %v\n", err)
		return 1
	}
	defer kv.Close()

	server := mcp.NewServer(cfg, kv, logs.For("mcp"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
