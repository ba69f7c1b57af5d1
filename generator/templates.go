package generator

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Kind is the target grammar of a template and of the artifact built from it.
type Kind int

const (
	KindMarkup Kind = iota
	KindScript
	KindStyle
)

// Kinds lists every template kind in publish order.
var Kinds = []Kind{KindStyle, KindScript, KindMarkup}

func (k Kind) String() string {
	switch k {
	case KindMarkup:
		return "markup"
	case KindScript:
		return "script"
	case KindStyle:
		return "style"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Extension is the artifact file extension, without the dot.
func (k Kind) Extension() string {
	switch k {
	case KindMarkup:
		return "html"
	case KindScript:
		return "js"
	case KindStyle:
		return "css"
	default:
		return ""
	}
}

// ContentType is the MIME type the artifact is served with.
func (k Kind) ContentType() string {
	switch k {
	case KindMarkup:
		return "text/html; charset=utf-8"
	case KindScript:
		return "text/javascript; charset=utf-8"
	case KindStyle:
		return "text/css; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

//go:embed templates/widget.html templates/widget.js templates/widget.css
var embeddedTemplates embed.FS

// DefaultTemplates returns the templates shipped with the binary.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// TemplateSet holds the raw text of the three templates.
type TemplateSet map[Kind]string

// TemplateLoader reads widget templates from a file system.
type TemplateLoader struct {
	fsys fs.FS
}

// NewTemplateLoader creates a loader over fsys, which must contain
// widget.html, widget.js and widget.css at its root.
func NewTemplateLoader(fsys fs.FS) *TemplateLoader {
	return &TemplateLoader{fsys: fsys}
}

func templateName(kind Kind) string {
	return "widget." + kind.Extension()
}

// Load returns the raw text of one template. Any read or decode problem is a
// CodeTemplateUnavailable error; there is no fallback template.
func (l *TemplateLoader) Load(kind Kind) (string, error) {
	if kind.Extension() == "" {
		return "", templateUnavailable(kind, fmt.Errorf("unsupported template kind"))
	}
	data, err := fs.ReadFile(l.fsys, templateName(kind))
	if err != nil {
		return "", templateUnavailable(kind, err)
	}
	if !utf8.Valid(data) {
		return "", templateUnavailable(kind, fmt.Errorf("%s is not valid UTF-8", templateName(kind)))
	}
	return string(data), nil
}

// LoadAll reads the three templates concurrently.
func (l *TemplateLoader) LoadAll(ctx context.Context) (TemplateSet, error) {
	texts := make([]string, len(Kinds))
	g, _ := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		g.Go(func() error {
			text, err := l.Load(kind)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := make(TemplateSet, len(Kinds))
	for i, kind := range Kinds {
		set[kind] = texts[i]
	}
	return set, nil
}
