package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/huh"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/cyberpodolia/deskwin/internal/config"
	"github.com/cyberpodolia/deskwin/internal/ipc"
	"github.com/cyberpodolia/deskwin/internal/preview"
	"github.com/cyberpodolia/deskwin/internal/share"
	"github.com/cyberpodolia/deskwin/internal/store"
	"github.com/cyberpodolia/deskwin/internal/viewport"
)

const defaultProfile = "default"

// Replaced in tests.
var (
	reloadTabs = func(reason string) (*ipc.ReloadData, error) {
		return ipc.NewClient().Reload(reason)
	}
	copyToClipboard = clipboard.WriteAll
	confirmReset    = confirmResetPrompt
)

func printLayoutUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  deskwin layout show  [--profile NAME] [--mobile] [--raw]")
	fmt.Fprintln(w, "  deskwin layout share [--profile NAME] [--url PAGE_URL] [--copy]")
	fmt.Fprintln(w, "  deskwin layout apply [--profile NAME] [--no-reload] <token|share-url>")
	fmt.Fprintln(w, "  deskwin layout reset [--profile NAME] [--yes] [--no-reload]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskwin layout <command> --help' for command-specific options.")
}

func runLayout(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printLayoutUsage(stderr)
		return 2
	}

	switch args[0] {
	case "show":
		return runLayoutShow(args[1:], stdout, stderr)
	case "share":
		return runLayoutShare(args[1:], stdout, stderr)
	case "apply":
		return runLayoutApply(args[1:], stdout, stderr)
	case "reset":
		return runLayoutReset(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printLayoutUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown layout command: %s\n\n", args[0])
		printLayoutUsage(stderr)
		return 2
	}
}

// layoutTarget is the store a layout subcommand works on.
type layoutTarget struct {
	cfg     *config.Config
	kv      store.Backend
	st      *store.LayoutStore
	profile string
}

func (t *layoutTarget) Close() {
	_ = t.kv.Close()
}

// openLayout opens the record of profile in mode. The store is enabled so
// commands may write through it.
func openLayout(configPath, profile string, mode viewport.Mode) (*layoutTarget, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if profile == "" {
		profile = defaultProfile
	}
	kv, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}
	scoped, err := store.Scoped(kv, profile)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	st := store.NewLayoutStore(scoped, cfg.Windows.StorageKey, mode, nil)
	st.Enable()
	return &layoutTarget{cfg: cfg, kv: kv, st: st, profile: profile}, nil
}

func addLayoutFlags(fs *flag.FlagSet) (configPath, profile *string) {
	configPath = fs.StringP("config", "c", "", "Config file path (default: ~/.config/deskwin/config.yaml)")
	profile = fs.StringP("profile", "P", defaultProfile, "Browser profile")
	return configPath, profile
}

func runLayoutShow(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("layout show", stderr, func(w io.Writer) {
		fmt.Fprintln(w, "Usage: deskwin layout show [--profile NAME] [--mobile] [--raw]")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Draw the stored layout of a profile.")
	})
	configPath, profile := addLayoutFlags(fs)
	mobile := fs.Bool("mobile", false, "Show the mobile record")
	raw := fs.Bool("raw", false, "Print the stored record as-is")
	width := fs.IntP("width", "w", 0, "Map width in columns (default: terminal width)")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "layout show takes no arguments")
		fs.Usage()
		return 2
	}

	mode := viewport.Desktop
	if *mobile {
		mode = viewport.Mobile
	}
	target, err := openLayout(*configPath, *profile, mode)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer target.Close()

	if *raw {
		rec, ok := target.st.Raw()
		if !ok {
			fmt.Fprintln(stderr, "no layout stored")
			return 1
		}
		fmt.Fprintln(stdout, rec)
		return 0
	}

	snap, ok := target.st.Load()
	if !ok {
		fmt.Fprintf(stdout, "profile %s: no layout stored (%s)\n", target.profile, target.st.Key())
		return 0
	}
	w := *width
	if w <= 0 {
		w = preview.TerminalWidth(os.Stdout)
	}
	title := fmt.Sprintf("profile %s · %s · top z %d", target.profile, mode, snap.TopZIndex)
	fmt.Fprintln(stdout, preview.Render(title, snap, w))
	return 0
}

func runLayoutShare(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("layout share", stderr, func(w io.Writer) {
		fmt.Fprintln(w, "Usage: deskwin layout share [--profile NAME] [--url PAGE_URL] [--copy]")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Print the stored desktop layout as a share token, or as a link when --url is given.")
	})
	configPath, profile := addLayoutFlags(fs)
	pageURL := fs.StringP("url", "u", "", "Page URL to build the share link for")
	copyOut := fs.Bool("copy", false, "Copy the result to the clipboard")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "layout share takes no arguments")
		fs.Usage()
		return 2
	}

	target, err := openLayout(*configPath, *profile, viewport.Desktop)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer target.Close()

	codec := share.NewCodec(target.cfg.Windows.ShareParam, nil)
	token, err := codec.Encode(target.st)
	if err != nil {
		fmt.Fprintf(stderr, "profile %s: %v\n", target.profile, err)
		return 1
	}
	result := token
	if *pageURL != "" {
		result, err = codec.ShareURL(codec.StripToken(*pageURL), token)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	fmt.Fprintln(stdout, result)
	if *copyOut {
		if err := copyToClipboard(result); err != nil {
			fmt.Fprintf(stderr, "Failed to copy to clipboard: %v\n", err)
			return 1
		}
		fmt.Fprintln(stderr, "Copied to clipboard.")
	}
	return 0
}

func runLayoutApply(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("layout apply", stderr, func(w io.Writer) {
		fmt.Fprintln(w, "Usage: deskwin layout apply [--profile NAME] [--no-reload] <token|share-url>")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Install a shared layout as the profile's desktop layout.")
	})
	configPath, profile := addLayoutFlags(fs)
	noReload := fs.Bool("no-reload", false, "Do not ask a running server to reload open tabs")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "layout apply requires exactly one token or share URL")
		fs.Usage()
		return 2
	}

	target, err := openLayout(*configPath, *profile, viewport.Desktop)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer target.Close()

	codec := share.NewCodec(target.cfg.Windows.ShareParam, nil)
	token := strings.TrimSpace(fs.Arg(0))
	if strings.Contains(token, "://") {
		t, ok := codec.TokenFromURL(token)
		if !ok {
			fmt.Fprintf(stderr, "url has no %q parameter\n", codec.Param())
			return 1
		}
		token = t
	}
	if err := codec.Decode(target.st, token); err != nil {
		fmt.Fprintf(stderr, "Failed to apply layout: %v\n", err)
		return 1
	}

	n := 0
	if snap, ok := target.st.Load(); ok {
		n = len(snap.Windows)
	}
	fmt.Fprintf(stdout, "Applied layout with %d window(s) to profile %s\n", n, target.profile)
	if !*noReload {
		reportReload(stdout, stderr, "shared layout applied")
	}
	return 0
}

func runLayoutReset(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("layout reset", stderr, func(w io.Writer) {
		fmt.Fprintln(w, "Usage: deskwin layout reset [--profile NAME] [--yes] [--no-reload]")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Remove the stored desktop layout; the next visit arranges the page defaults.")
	})
	configPath, profile := addLayoutFlags(fs)
	yes := fs.BoolP("yes", "y", false, "Do not ask for confirmation")
	noReload := fs.Bool("no-reload", false, "Do not ask a running server to reload open tabs")
	if err := fs.Parse(args); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "layout reset takes no arguments")
		fs.Usage()
		return 2
	}

	target, err := openLayout(*configPath, *profile, viewport.Desktop)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer target.Close()

	if _, ok := target.st.Raw(); !ok {
		fmt.Fprintf(stdout, "profile %s has no stored layout\n", target.profile)
		return 0
	}
	if !*yes {
		ok, err := confirmReset(target.profile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if !ok {
			fmt.Fprintln(stdout, "Cancelled.")
			return 0
		}
	}

	if err := target.st.Clear(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "Layout reset for profile %s\n", target.profile)
	if !*noReload {
		reportReload(stdout, stderr, "layout reset")
	}
	return 0
}

// reportReload asks a running server to reload its tabs. A server that is
// not running only gets a note: the change applies on the next visit.
func reportReload(stdout, stderr io.Writer, reason string) {
	data, err := reloadTabs(reason)
	if err != nil {
		fmt.Fprintln(stderr, "Server not reachable; open tabs pick up the change on their next load.")
		return
	}
	fmt.Fprintf(stdout, "Reloaded %d open tab(s)\n", data.Sessions)
}

func confirmResetPrompt(profile string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to reset without a terminal; pass --yes")
	}
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Reset the layout of profile %q?", profile)).
		Description("Window positions, sizes and stacking go back to the page defaults.").
		Affirmative("Reset").
		Negative("Cancel").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
