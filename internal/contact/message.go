// Package contact implements the contact form endpoint and its Telegram
// delivery.
package contact

import (
	"html"
	"strconv"
	"strings"
)

// Submission is the JSON body posted by the contact form.
type Submission struct {
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Company    string      `json:"company"`
	Message    string      `json:"message"`
	Website    string      `json:"website"` // honeypot, always empty for people
	ClientMeta *ClientMeta `json:"clientMeta,omitempty"`
}

// ClientMeta is browser context sent along with a submission.
type ClientMeta struct {
	PageURL   string  `json:"pageUrl,omitempty"`
	UserAgent string  `json:"userAgent,omitempty"`
	Language  string  `json:"language,omitempty"`
	TimeZone  string  `json:"timeZone,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
	Screen    *Screen `json:"screen,omitempty"`
}

// Screen is the reported display size.
type Screen struct {
	W   float64 `json:"w"`
	H   float64 `json:"h"`
	DPR float64 `json:"dpr"`
}

const notAvailable = "N/A"

// FormatMessage renders a submission as the Telegram notification text.
// User-supplied values are HTML-escaped because the message is sent with
// parse_mode HTML.
func FormatMessage(s Submission, remoteAddr string) string {
	var b strings.Builder
	b.WriteString("New Contact Form Submission:\n\n")
	b.WriteString("Name: " + esc(s.Name) + "\n")
	if s.Email != "" {
		b.WriteString("Email: " + esc(s.Email) + "\n")
	}
	if s.Company != "" {
		b.WriteString("Company: " + esc(s.Company) + "\n")
	}
	b.WriteString("\nMessage:\n" + esc(s.Message) + "\n\n")

	meta := s.ClientMeta
	if meta == nil {
		meta = &ClientMeta{}
	}
	b.WriteString("--- Client Info ---\n")
	b.WriteString("IP: " + esc(orNA(remoteAddr)) + "\n")
	b.WriteString("Timestamp: " + esc(orNA(meta.Timestamp)) + "\n")
	b.WriteString("Page: " + esc(orNA(meta.PageURL)) + "\n")
	b.WriteString("User Agent: " + esc(orNA(meta.UserAgent)) + "\n")
	b.WriteString("Language: " + esc(orNA(meta.Language)) + "\n")
	b.WriteString("Timezone: " + esc(orNA(meta.TimeZone)) + "\n")
	if sc := meta.Screen; sc != nil {
		b.WriteString("Screen: " + num(sc.W) + "x" + num(sc.H) + " @" + num(sc.DPR) + "x\n")
	}
	return b.String()
}

func esc(s string) string {
	return html.EscapeString(s)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
