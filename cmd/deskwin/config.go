package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/cyberpodolia/deskwin/internal/config"
)

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  deskwin config validate [--path PATH]")
	fmt.Fprintln(w, "  deskwin config print [--path PATH] [--defaults] [--sources]")
}

func runConfig(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage(stderr)
		return 2
	}

	switch args[0] {
	case "validate":
		fs := newFlagSet("config validate", stderr, printConfigUsage)
		path := fs.String("path", "", "Config file path (default: ~/.config/deskwin/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return parseExit(err)
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, "config: ok")
		return 0

	case "print":
		fs := newFlagSet("config print", stderr, printConfigUsage)
		path := fs.String("path", "", "Config file path (default: ~/.config/deskwin/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printSources := fs.Bool("sources", false, "List which file line set each value")
		if err := fs.Parse(args[1:]); err != nil {
			return parseExit(err)
		}

		if *printDefaults {
			data, err := config.DefaultConfig().Encode()
			if err != nil {
				fmt.Fprintln(stderr, err)
				return 1
			}
			fmt.Fprint(stdout, string(data))
			return 0
		}

		if *path == "" {
			p, err := config.DefaultConfigPath()
			if err != nil {
				fmt.Fprintln(stderr, err)
				return 1
			}
			*path = p
		}
		res, err := config.LoadFromPath(*path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if res.File == "" {
			fmt.Fprintln(stdout, "# no config file; built-in defaults")
		} else {
			fmt.Fprintf(stdout, "# file: %s\n", res.File)
		}
		if *printSources {
			keys := make([]string, 0, len(res.Sources))
			for k := range res.Sources {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				src := res.Sources[k]
				fmt.Fprintf(stdout, "# %s: %s:%d\n", k, src.File, src.Line)
			}
		}
		data, err := res.Config.Encode()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprint(stdout, string(data))
		return 0

	default:
		fmt.Fprintf(stderr, "Unknown config command: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}
