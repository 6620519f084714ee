// Package markup reads the window elements out of the page HTML.
package markup

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/cyberpodolia/deskwin/internal/layout"
	"github.com/cyberpodolia/deskwin/internal/store"
)

// windowXPath matches elements whose class list contains "window".
const windowXPath = `//*[contains(concat(' ', normalize-space(@class), ' '), ' window ')]`

// Parse returns the windows declared in the page, in document order.
// Elements without a data-id are skipped.
func Parse(r io.Reader) ([]layout.WindowSpec, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return windows(doc)
}

// ParseFile reads and parses the page at path.
func ParseFile(path string) ([]layout.WindowSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func windows(doc *html.Node) ([]layout.WindowSpec, error) {
	nodes, err := htmlquery.QueryAll(doc, windowXPath)
	if err != nil {
		return nil, fmt.Errorf("failed to query windows: %w", err)
	}
	specs := make([]layout.WindowSpec, 0, len(nodes))
	for _, n := range nodes {
		id := strings.TrimSpace(htmlquery.SelectAttr(n, "data-id"))
		if id == "" {
			continue
		}
		specs = append(specs, layout.WindowSpec{
			ID:   id,
			Rect: rectFromStyle(htmlquery.SelectAttr(n, "style")),
		})
	}
	return specs, nil
}

// rectFromStyle reads left/top/width/height from an inline style attribute.
// Properties that are absent or not in px stay zero.
func rectFromStyle(style string) layout.Rect {
	var r layout.Rect
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		v, ok := store.ParsePx(strings.TrimSpace(value))
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "left":
			r.Left = v
		case "top":
			r.Top = v
		case "width":
			r.Width = v
		case "height":
			r.Height = v
		}
	}
	return r
}
