// Package render turns a sorted contributor list into presentation markup.
package render

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/url"
	"strings"
	"text/template"

	"github.com/naka-gawa/contributor-stats/internal/domain"
	"github.com/naka-gawa/contributor-stats/internal/gateway"
)

// Renderer produces markup referencing each author's profile and avatar.
type Renderer interface {
	Render(ctx context.Context, contributors []domain.Contribution) (domain.Artifact, error)
}

// AvatarSource resolves and downloads profile images.
type AvatarSource interface {
	URL(login string) string
	Fetch(ctx context.Context, login string) (*gateway.Avatar, error)
}

// Options tunes the layout shared by every renderer.
type Options struct {
	Columns     int
	AvatarSize  int
	Concurrency int
	// AssetPath is where a generated image is written, AssetLink how the
	// target document refers to it.
	AssetPath string
	AssetLink string
}

// New returns the renderer for style: "table", "flow" or "svg".
func New(style string, opts Options, avatars AvatarSource, logger *log.Logger) (Renderer, error) {
	if opts.Columns <= 0 {
		opts.Columns = 10
	}
	if opts.AvatarSize <= 0 {
		opts.AvatarSize = 64
	}
	switch style {
	case "table":
		return &TableRenderer{columns: opts.Columns}, nil
	case "flow":
		return &FlowRenderer{}, nil
	case "svg":
		if opts.AssetPath == "" {
			return nil, fmt.Errorf("svg renderer needs an asset path")
		}
		return NewSVGRenderer(opts, avatars, logger), nil
	default:
		return nil, fmt.Errorf("unknown style %q", style)
	}
}

const (
	profileBaseURL = "https://github.com/"
	proxyBaseURL   = "https://wsrv.nl/"
)

func profileURL(login string) string {
	return profileBaseURL + url.PathEscape(login)
}

// proxyAvatarURL asks the image proxy for a circular crop of the avatar.
func proxyAvatarURL(login string) string {
	return fmt.Sprintf("%s?url=github.com/%s.png&h=80&w=80&fit=cover&mask=circle", proxyBaseURL, url.QueryEscape(login))
}

var funcs = template.FuncMap{
	"esc":     html.EscapeString,
	"profile": profileURL,
	"proxy":   proxyAvatarURL,
	"plural": func(n int) string {
		if n == 1 {
			return ""
		}
		return "s"
	},
}

func execute(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return b.String(), nil
}
