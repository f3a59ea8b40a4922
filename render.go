package frame

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "impractical.co/frame"

// layout is the document every page is rendered into. Head fragment, menu,
// and body always appear in that order.
var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<head>
{{- with .Title }}
<title>{{ . }}</title>
{{- end }}
{{ .Head }}
{{- with .Stylesheet }}
<style>
{{ . }}
</style>
{{- end }}
</head>
<body>
<div id="menu">
{{- range .Menu }}
<a class="menuitem{{ if .Active }} current{{ end }}" href="{{ .Href }}"{{ if .Active }} aria-current="page"{{ end }}>{{ .Label }}</a>
{{- end }}
</div>
<div id="page">
{{ .Body }}
</div>
</body>
</html>
`))

// PageRequest is everything needed to render a single page.
type PageRequest struct {
	// CurrentPageID is the ID of the NavEntry to mark active. Leave it
	// empty when the page isn't part of the navigation menu.
	CurrentPageID string

	// Title, if set, is rendered in a <title> element before the head
	// Fragment.
	Title string

	// Body is the page's own markup. It is inserted into the document
	// without being escaped, sanitized, or validated.
	Body template.HTML
}

// renderData is the data passed to the layout template.
type renderData struct {
	Title      string
	Head       template.HTML
	Stylesheet template.CSS
	Menu       []MenuItem
	Body       template.HTML
}

// Render returns the complete HTML document for req. It fails with a
// *NotFoundError if the site has no head Fragment, and cannot otherwise
// fail. Rendering the same PageRequest twice always produces the same
// output.
func (s *Site) Render(ctx context.Context, req PageRequest) (string, error) {
	var out strings.Builder
	if err := s.RenderTo(ctx, &out, req); err != nil {
		return "", err
	}
	return out.String(), nil
}

// RenderTo writes the complete HTML document for req to out. Nothing is
// written if the site has no head Fragment.
func (s *Site) RenderTo(ctx context.Context, out io.Writer, req PageRequest) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "frame.Render", trace.WithAttributes(
		attribute.String("frame.page_id", req.CurrentPageID),
		attribute.String("frame.title", req.Title),
	))
	defer span.End()

	err := s.renderTo(ctx, out, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *Site) renderTo(ctx context.Context, out io.Writer, req PageRequest) error {
	head, err := s.fragments.Get(HeadFragment)
	if err != nil {
		return fmt.Errorf("error rendering page %q: %w", req.CurrentPageID, err)
	}
	css, err := stylesheet(s.fragments)
	if err != nil {
		return fmt.Errorf("error rendering page %q: %w", req.CurrentPageID, err)
	}

	data := renderData{
		Title:      req.Title,
		Head:       template.HTML(head), // #nosec G203
		Stylesheet: css,
		Menu:       BuildMenu(s.entries, req.CurrentPageID),
		Body:       req.Body,
	}

	Logger(ctx).DebugContext(ctx, "rendering page",
		"page_id", req.CurrentPageID,
		"menu_items", len(data.Menu))

	err = layout.Execute(out, data)
	if err != nil {
		return fmt.Errorf("error executing layout for page %q: %w", req.CurrentPageID, err)
	}
	return nil
}
