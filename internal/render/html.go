package render

import (
	"context"
	"text/template"

	"github.com/naka-gawa/contributor-stats/internal/domain"
)

var tableTemplate = template.Must(template.New("table").Funcs(funcs).Parse(`<div align="center">
<table style="border-width:0; border:none; border-spacing:0; padding:0; margin:0;">
{{- range .}}
  <tr>
{{- range .}}
    <td align="center" style="border:none; padding: 10px;">
      <a href="{{esc (profile .Login)}}" title="{{esc .Login}}">
        <img src="{{esc (proxy .Login)}}" width="50" height="50" alt="{{esc .Login}}" />
      </a>
    </td>
{{- end}}
  </tr>
{{- end}}
</table>
</div>`))

// TableRenderer lays avatars out in a fixed-width HTML grid.
type TableRenderer struct {
	columns int
}

func (r *TableRenderer) Render(_ context.Context, contributors []domain.Contribution) (domain.Artifact, error) {
	markup, err := execute(tableTemplate, chunk(contributors, r.columns))
	if err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{Markup: markup}, nil
}

// chunk splits cs into rows of at most n entries; the last row may be short.
func chunk(cs []domain.Contribution, n int) [][]domain.Contribution {
	rows := make([][]domain.Contribution, 0, (len(cs)+n-1)/n)
	for len(cs) > n {
		rows = append(rows, cs[:n])
		cs = cs[n:]
	}
	if len(cs) > 0 {
		rows = append(rows, cs)
	}
	return rows
}

var flowTemplate = template.Must(template.New("flow").Funcs(funcs).Parse(`<p align="center">
{{- range .}}
  <a href="{{esc (profile .Login)}}" title="{{esc .Login}} ({{.MergedPRs}} merged PR{{plural .MergedPRs}})"><img src="{{esc (proxy .Login)}}" width="50" height="50" alt="{{esc .Login}}" /></a>
{{- end}}
</p>`))

// FlowRenderer emits avatars inline so they wrap with the page width.
type FlowRenderer struct{}

func (r *FlowRenderer) Render(_ context.Context, contributors []domain.Contribution) (domain.Artifact, error) {
	markup, err := execute(flowTemplate, contributors)
	if err != nil {
		return domain.Artifact{}, err
	}
	return domain.Artifact{Markup: markup}, nil
}
