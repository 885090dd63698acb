package backend

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"github.com/TobiSchelling/repurposer/internal/content"
	"github.com/TobiSchelling/repurposer/internal/decode"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var exportPage = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 760px; margin: 2rem auto; padding: 0 1rem; line-height: 1.55; color: #1f2328; }
h1 { font-size: 1.6rem; margin-bottom: .25rem; }
.meta { color: #656d76; font-size: .9rem; margin-bottom: 2rem; }
section { border-top: 1px solid #d0d7de; padding-top: 1rem; margin-top: 2rem; }
section h2 { font-size: 1.2rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">{{.WordCount}} words{{if .SourceURL}} &middot; <a href="{{.SourceURL}}">{{.SourceURL}}</a>{{end}} &middot; {{.CreatedAt}}</div>
{{range .Sections}}<section>
<h2>{{.Label}}</h2>
{{.Body}}
</section>
{{end}}</body>
</html>
`))

type exportSection struct {
	Label string
	Body  template.HTML
}

type exportDoc struct {
	Title     string
	SourceURL string
	WordCount int
	CreatedAt string
	Sections  []exportSection
}

func markdownHTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// ExportHistoryItem renders a saved submission and its outputs to a
// standalone HTML document and returns the file path.
func (l *Local) ExportHistoryItem(ctx context.Context, id string) (string, error) {
	detail, err := l.GetHistoryDetail(ctx, id)
	if err != nil {
		return "", err
	}
	if len(detail.Outputs) == 0 {
		return "", content.Invalid("nothing to export: submission %s has no outputs", id)
	}
	if l.opts.ExportDir == "" {
		return "", fmt.Errorf("export directory not configured")
	}

	doc := exportDoc{
		Title:     detail.Input.Title,
		SourceURL: detail.Input.SourceURL,
		WordCount: detail.Input.WordCount,
		CreatedAt: detail.Input.CreatedAt,
	}
	if doc.Title == "" {
		doc.Title = "Repurposed content"
	}
	for _, o := range detail.Outputs {
		label := o.Format
		text := o.OutputText
		if v, err := decode.Decode(o.Format, o.OutputText); err == nil {
			label = v.Format().Label()
			text = decode.Markdown(v)
		}
		body, err := markdownHTML(text)
		if err != nil {
			return "", fmt.Errorf("rendering %s: %w", o.Format, err)
		}
		doc.Sections = append(doc.Sections, exportSection{Label: label, Body: body})
	}

	var buf bytes.Buffer
	if err := exportPage.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("rendering export: %w", err)
	}

	if err := os.MkdirAll(l.opts.ExportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	name := fmt.Sprintf("export_%s_%s.html", short, l.now().Format("20060102_150405"))
	path := filepath.Join(l.opts.ExportDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	l.logger.Info("export written", zap.String("path", path), zap.Int("outputs", len(detail.Outputs)))
	return path, nil
}
