package render

import (
	"context"
	"encoding/base64"
	"log"
	"text/template"

	"github.com/naka-gawa/contributor-stats/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	svgPadding     = 8
	svgLabelHeight = 16
)

var svgTemplate = template.Must(template.New("svg").Funcs(funcs).Parse(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
  <style>
    .contributor .name { opacity: 0; transition: opacity 0.2s; font: 12px -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; fill: #57606a; }
    .contributor:hover .name { opacity: 1; }
  </style>
  <defs>
    <clipPath id="avatar-clip" clipPathUnits="objectBoundingBox"><circle cx="0.5" cy="0.5" r="0.5" /></clipPath>
  </defs>
{{- range .Entries}}
  <a xlink:href="{{esc (profile .Login)}}" href="{{esc (profile .Login)}}" target="_blank">
    <g class="contributor" transform="translate({{.X}},{{.Y}})">
      <title>{{esc .Login}} ({{.MergedPRs}} merged PR{{plural .MergedPRs}})</title>
      <image x="{{$.Padding}}" y="{{$.Padding}}" width="{{$.Size}}" height="{{$.Size}}" xlink:href="{{esc .Image}}" href="{{esc .Image}}" clip-path="url(#avatar-clip)" />
      <text class="name" x="{{$.Center}}" y="{{$.LabelY}}" text-anchor="middle">{{esc .Login}}</text>
    </g>
  </a>
{{- end}}
</svg>
`))

var svgEmbedTemplate = template.Must(template.New("svg-embed").Funcs(funcs).Parse(`<p align="center">
  <img src="{{esc .}}" alt="Contributors" />
</p>`))

type svgEntry struct {
	domain.Contribution
	X, Y  int
	Image string
}

type svgDocument struct {
	Width, Height int
	Size, Padding int
	Center        int
	LabelY        int
	Entries       []svgEntry
}

// SVGRenderer draws a standalone SVG with every avatar embedded as a data URI.
type SVGRenderer struct {
	opts    Options
	avatars AvatarSource
	logger  *log.Logger
}

// NewSVGRenderer creates an SVGRenderer.
func NewSVGRenderer(opts Options, avatars AvatarSource, logger *log.Logger) *SVGRenderer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Columns <= 0 {
		opts.Columns = 10
	}
	if opts.AvatarSize <= 0 {
		opts.AvatarSize = 64
	}
	return &SVGRenderer{opts: opts, avatars: avatars, logger: logger}
}

// Render fetches each avatar and builds the image. An avatar that cannot be
// downloaded is linked by its remote URL instead of embedded.
func (r *SVGRenderer) Render(ctx context.Context, contributors []domain.Contribution) (domain.Artifact, error) {
	images := r.fetchAvatars(ctx, contributors)

	cell := r.opts.AvatarSize + 2*svgPadding
	cellHeight := cell + svgLabelHeight
	cols := min(r.opts.Columns, len(contributors))
	rows := (len(contributors) + r.opts.Columns - 1) / r.opts.Columns

	doc := svgDocument{
		Width:   cols * cell,
		Height:  rows * cellHeight,
		Size:    r.opts.AvatarSize,
		Padding: svgPadding,
		Center:  cell / 2,
		LabelY:  cell + svgLabelHeight/2,
		Entries: make([]svgEntry, len(contributors)),
	}
	for i, c := range contributors {
		doc.Entries[i] = svgEntry{
			Contribution: c,
			X:            (i % r.opts.Columns) * cell,
			Y:            (i / r.opts.Columns) * cellHeight,
			Image:        images[i],
		}
	}

	svg, err := execute(svgTemplate, doc)
	if err != nil {
		return domain.Artifact{}, err
	}
	markup, err := execute(svgEmbedTemplate, r.opts.AssetLink)
	if err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{
		Markup: markup,
		Assets: []domain.Asset{{Path: r.opts.AssetPath, Content: []byte(svg)}},
	}, nil
}

// fetchAvatars returns one image reference per contributor, in order.
func (r *SVGRenderer) fetchAvatars(ctx context.Context, contributors []domain.Contribution) []string {
	images := make([]string, len(contributors))
	var eg errgroup.Group
	eg.SetLimit(r.opts.Concurrency)
	for i, c := range contributors {
		eg.Go(func() error {
			avatar, err := r.avatars.Fetch(ctx, c.Login)
			if err != nil {
				r.logger.Printf("Warning: Could not embed avatar for %s: %v", c.Login, err)
				images[i] = r.avatars.URL(c.Login)
				return nil
			}
			images[i] = "data:" + avatar.ContentType + ";base64," + base64.StdEncoding.EncodeToString(avatar.Data)
			return nil
		})
	}
	_ = eg.Wait()
	return images
}
