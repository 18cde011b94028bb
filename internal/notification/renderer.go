package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"
)

const (
	KindVerification  = "verification"
	KindPasswordReset = "password_reset"

	defaultResetBaseURL = "http://localhost:3000/reset-password"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type ResetDetails struct {
	DisplayName string
}

type RendererConfig struct {
	ResetBaseURL    string
	VerificationTTL time.Duration
	ResetTTL        time.Duration
}

// Renderer turns notification requests into messages. Templates are parsed
// once at construction.
type Renderer struct {
	cfg  RendererConfig
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if strings.TrimSpace(cfg.ResetBaseURL) == "" {
		cfg.ResetBaseURL = defaultResetBaseURL
	}
	if _, err := url.Parse(cfg.ResetBaseURL); err != nil {
		return nil, fmt.Errorf("parse reset base url: %w", err)
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &Renderer{cfg: cfg, html: html, text: text}, nil
}

func (r *Renderer) Verification(email, code string) (Message, error) {
	data := map[string]any{
		"Code":      code,
		"ExpiresIn": humanDuration(r.cfg.VerificationTTL),
	}
	return r.render(KindVerification, email, "Verify your Campus Connect account", "verification", data, "")
}

func (r *Renderer) PasswordReset(email, rawToken string, details ResetDetails) (Message, error) {
	link, err := r.resetLink(rawToken)
	if err != nil {
		return Message{}, err
	}
	name := strings.TrimSpace(details.DisplayName)
	if name == "" {
		name = "there"
	}
	data := map[string]any{
		"DisplayName": name,
		"ResetLink":   link,
		"ExpiresIn":   humanDuration(r.cfg.ResetTTL),
	}
	return r.render(KindPasswordReset, email, "Reset your Campus Connect password", "password_reset", data, link)
}

func (r *Renderer) resetLink(rawToken string) (string, error) {
	u, err := url.Parse(r.cfg.ResetBaseURL)
	if err != nil {
		return "", fmt.Errorf("parse reset base url: %w", err)
	}
	q := u.Query()
	q.Set("token", rawToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *Renderer) render(kind, to, subject, name string, data map[string]any, link string) (Message, error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := r.html.ExecuteTemplate(&htmlBuf, name+".html.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := r.text.ExecuteTemplate(&textBuf, name+".txt.tmpl", data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", kind, err)
	}
	return Message{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBuf.String(),
		TextBody: textBuf.String(),
		Kind:     kind,
		LinkHost: linkHost(link),
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short while"
	case d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
