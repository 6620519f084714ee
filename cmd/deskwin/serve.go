package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cyberpodolia/deskwin/internal/runtimepath"
	"github.com/cyberpodolia/deskwin/internal/server"
	"github.com/cyberpodolia/deskwin/internal/store"
)

func runServe(args []string) int {
	fs := newFlagSet("serve", os.Stderr, func(w io.Writer) {
		fmt.Fprintln(w, "Usage: deskwin serve [--config PATH] [--bind ADDR] [--port N] [--page FILE]")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Serve the page, its static files and the layout websocket in the foreground.")
		fmt.Fprintln(w, "The default page (templates/index.html) and static/ dir are resolved from the")
		fmt.Fprintln(w, "working directory; run from the repository root or set server.page and server.static_dir.")
	})
	configPath := fs.StringP("config", "c", "", "Config file path (default: ~/.config/deskwin/config.yaml)")
	bind := fs.String("bind", "", "Override server.bind")
	port := fs.IntP("port", "p", -1, "Override server.port")
	page := fs.String("page", "", "Override server.page")
	verbose := fs.BoolP("verbose", "v", false, "Also log to stderr")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "serve takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if *bind != "" {
		cfg.Server.Bind = *bind
	}
	if *port >= 0 {
		cfg.Server.Port = *port
	}
	if *page != "" {
		cfg.Server.Page = *page
	}

	logs, err := newLogManager(cfg, *verbose)
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

	srv, err := server.New(cfg, kv, logs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		return 1
	}

	lockPath, err := runtimepath.LockPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "deskwin serving %s on %s:%d\n", cfg.Server.Page, cfg.Server.Bind, cfg.Server.Port)
	if err := srv.Run(ctx, server.RunOptions{LockPath: lockPath, SocketPath: socketPath}); err != nil {
		if errors.Is(err, server.ErrAlreadyRunning) {
			fmt.Fprintln(os.Stderr, "deskwin is already running; use 'deskwin status' or 'deskwin reload'")
			return 1
		}
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		return 1
	}
	return 0
}
