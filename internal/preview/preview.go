// Package preview draws a stored layout as a character map for the terminal.
package preview

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/cyberpodolia/deskwin/internal/layout"
	"github.com/cyberpodolia/deskwin/internal/store"
)

const (
	defaultWidth = 80
	minWidth     = 20
	maxWidth     = 160
)

// Entry is one drawable window of a snapshot.
type Entry struct {
	Label int
	ID    string
	Rect  layout.Rect
	Z     int
}

// Entries returns the windows of snap that carry full geometry, ordered
// bottom to top. Labels follow that order starting at 1.
func Entries(snap store.Snapshot) []Entry {
	entries := make([]Entry, 0, len(snap.Windows))
	for id, rec := range snap.Windows {
		left, okL := store.ParsePx(rec.Left)
		top, okT := store.ParsePx(rec.Top)
		w, okW := store.ParsePx(rec.Width)
		h, okH := store.ParsePx(rec.Height)
		if !okL || !okT || !okW || !okH || w <= 0 || h <= 0 {
			continue
		}
		z, _ := store.ParseZ(rec.ZIndex)
		entries = append(entries, Entry{
			ID:   id,
			Rect: layout.Rect{Left: left, Top: top, Width: w, Height: h},
			Z:    z,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Z != entries[j].Z {
			return entries[i].Z < entries[j].Z
		}
		return entries[i].ID < entries[j].ID
	})
	for i := range entries {
		entries[i].Label = i + 1
	}
	return entries
}

// Canvas draws entries scaled into a width x height character grid with a
// double-line frame. Later entries are drawn over earlier ones.
func Canvas(entries []Entry, width, height int) []string {
	if width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	extentW, extentH := extent(entries)
	for _, e := range entries {
		drawWindow(canvas, e, extentW, extentH)
	}
	drawFrame(canvas)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

// extent is the desktop area the map covers: from the origin to the
// furthest window edge.
func extent(entries []Entry) (float64, float64) {
	rects := make([]layout.Rect, 0, len(entries))
	for _, e := range entries {
		rects = append(rects, e.Rect)
	}
	u := layout.Union(rects)
	w := math.Max(u.Right(), 1)
	h := math.Max(u.Bottom(), 1)
	return w, h
}

func drawWindow(canvas [][]rune, e Entry, extentW, extentH float64) {
	canvasH := len(canvas)
	canvasW := len(canvas[0])
	inner := func(v, extentV float64, cells int) int {
		return 1 + int(math.Round(v/extentV*float64(cells-3)))
	}
	x1 := inner(math.Max(e.Rect.Left, 0), extentW, canvasW)
	y1 := inner(math.Max(e.Rect.Top, 0), extentH, canvasH)
	x2 := inner(e.Rect.Right(), extentW, canvasW)
	y2 := inner(e.Rect.Bottom(), extentH, canvasH)
	if x2 > canvasW-2 {
		x2 = canvasW - 2
	}
	if y2 > canvasH-2 {
		y2 = canvasH - 2
	}
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			switch {
			case (y == y1 || y == y2) && (x == x1 || x == x2):
			case y == y1 || y == y2:
				canvas[y][x] = '─'
			case x == x1 || x == x2:
				canvas[y][x] = '│'
			default:
				canvas[y][x] = ' '
			}
		}
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	label := strconv.Itoa(e.Label)
	cy := (y1 + y2) / 2
	cx := (x1+x2)/2 - len(label)/2
	if cy > y1 && cy < y2 {
		for i, r := range label {
			if cx+i > x1 && cx+i < x2 {
				canvas[cy][cx+i] = r
			}
		}
	}
}

func drawFrame(canvas [][]rune) {
	h := len(canvas)
	w := len(canvas[0])
	for x := 0; x < w; x++ {
		canvas[0][x] = '═'
		canvas[h-1][x] = '═'
	}
	for y := 0; y < h; y++ {
		canvas[y][0] = '║'
		canvas[y][w-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][w-1] = '╗'
	canvas[h-1][0] = '╚'
	canvas[h-1][w-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat(" ", width)
	}
	return lines
}

// Legend returns one line per entry: label, id, position, size and z-index.
func Legend(entries []Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%d  %-16s %s,%s  %s×%s  z %d",
			e.Label, e.ID,
			store.FormatNumber(e.Rect.Left), store.FormatNumber(e.Rect.Top),
			store.FormatNumber(e.Rect.Width), store.FormatNumber(e.Rect.Height),
			e.Z))
	}
	return lines
}

// Plain renders the map and legend without styling.
func Plain(snap store.Snapshot, width int) string {
	entries := Entries(snap)
	if len(entries) == 0 {
		return "no windows stored"
	}
	width = clampWidth(width)
	lines := Canvas(entries, width, width/4+2)
	lines = append(lines, "")
	lines = append(lines, Legend(entries)...)
	return strings.Join(lines, "\n")
}

// Render is Plain with a title and colours for a terminal.
func Render(title string, snap store.Snapshot, width int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	mapStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	legendStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	topStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	entries := Entries(snap)
	if len(entries) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			emptyStyle.Render("no windows stored"),
		)
	}

	width = clampWidth(width)
	canvas := mapStyle.Render(strings.Join(Canvas(entries, width, width/4+2), "\n"))
	legend := Legend(entries)
	for i := range legend {
		if i == len(legend)-1 {
			legend[i] = topStyle.Render(legend[i])
		} else {
			legend[i] = legendStyle.Render(legend[i])
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		canvas,
		"",
		strings.Join(legend, "\n"),
	)
}

// TerminalWidth returns the width of f when it is a terminal, or a default.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

func clampWidth(w int) int {
	if w < minWidth {
		return minWidth
	}
	if w > maxWidth {
		return maxWidth
	}
	return w
}
