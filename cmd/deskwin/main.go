package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/cyberpodolia/deskwin/internal/config"
	"github.com/cyberpodolia/deskwin/internal/ipc"
	"github.com/cyberpodolia/deskwin/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "serve":
		os.Exit(runServe(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:], os.Stdout, os.Stderr))
	case "reload":
		os.Exit(runReload(os.Args[2:], os.Stdout, os.Stderr))
	case "layout":
		os.Exit(runLayout(os.Args[2:], os.Stdout, os.Stderr))
	case "config":
		os.Exit(runConfig(os.Args[2:], os.Stdout, os.Stderr))
	case "contact":
		os.Exit(runContact(os.Args[2:], os.Stdout, os.Stderr))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskwin <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve               Serve the page and its layout engine (foreground)")
	fmt.Fprintln(w, "  status              Show server status")
	fmt.Fprintln(w, "  reload              Re-read the page and reload open tabs")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout show         Draw a profile's stored layout")
	fmt.Fprintln(w, "  layout share        Print a share token or link")
	fmt.Fprintln(w, "  layout apply        Install a shared layout")
	fmt.Fprintln(w, "  layout reset        Remove a profile's stored layout")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  contact send        Send a message through the contact endpoint")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskwin <command> --help' for command-specific options.")
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		usage(stderr)
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}
	return fs
}

// parseExit maps a flag parse error to an exit code.
func parseExit(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func newLogManager(cfg *config.Config, console bool) (*logging.Manager, error) {
	file, err := cfg.LogFile()
	if err != nil {
		return nil, err
	}
	return logging.NewManager(logging.Config{
		FilePath:   file,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Level:      cfg.Logging.Level,
		Console:    console || cfg.Logging.Console,
	})
}

func runStatus(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("status", stderr, func(w io.Writer) {
		fmt.Fprintln(w, "Usage: deskwin status")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Show server status via IPC.")
	})
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "running:        %v\n", status.Running)
	fmt.Fprintf(stdout, "addr:           %s\n", status.Addr)
	fmt.Fprintf(stdout, "page:           %s\n", status.Page)
	fmt.Fprintf(stdout, "windows:        %d\n", status.Windows)
	fmt.Fprintf(stdout, "sessions:       %d\n", status.Sessions)
	fmt.Fprintf(stdout, "storage:        %s\n", status.Storage)
	fmt.Fprintf(stdout, "uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("reload", stderr, func(w io.Writer) {
		fmt.Fprintln(w, "Usage: deskwin reload [--reason TEXT]")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Re-read the page markup and tell every open tab to reload.")
	})
	reason := fs.StringP("reason", "r", "", "Reason recorded in the server log")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().Reload(*reason)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "Reloaded %d tab(s); page declares %d window(s)\n", data.Sessions, data.Windows)
	return 0
}
