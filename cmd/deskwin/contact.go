package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cyberpodolia/deskwin/internal/contact"
)

func printContactUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskwin contact send [--url BASE_URL] [--name NAME] [--email EMAIL] [--company COMPANY] <message>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Send a message through a running server's contact endpoint.")
	fmt.Fprintln(w, "Use '-' as the message to read it from stdin.")
}

func runContact(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] != "send" {
		if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
			printContactUsage(stdout)
			return 0
		}
		printContactUsage(stderr)
		return 2
	}

	fs := newFlagSet("contact send", stderr, printContactUsage)
	baseURL := fs.StringP("url", "u", "http://127.0.0.1:5000", "Server base URL")
	name := fs.StringP("name", "n", "", "Sender name (default: Anonymous)")
	email := fs.StringP("email", "e", "", "Sender email")
	company := fs.String("company", "", "Sender company")
	timeout := fs.Duration("timeout", 15*time.Second, "Request timeout")
	if err := fs.Parse(args[1:]); err != nil {
		return parseExit(err)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "contact send requires exactly one message argument")
		fs.Usage()
		return 2
	}

	message := fs.Arg(0)
	if message == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		message = string(data)
	}
	message = strings.TrimSpace(message)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := contact.NewClient(*baseURL, &http.Client{Timeout: *timeout})
	err := client.Submit(ctx, contact.Submission{
		Name:    *name,
		Email:   *email,
		Company: *company,
		Message: message,
		ClientMeta: &contact.ClientMeta{
			UserAgent: "deskwin-cli",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, "Message sent.")
	return 0
}
