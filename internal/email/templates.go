package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	ttemplate "text/template"
)

//go:embed templates
var templateFS embed.FS

const templateRoot = "templates"

// Template is one email in both renderings.
type Template struct {
	HTML      *template.Template
	Plaintext *ttemplate.Template
}

// Renderer holds every embedded template group, keyed by directory name.
type Renderer struct {
	templates map[string]*Template
}

// NewRenderer parses all template groups. Each group directory must hold
// exactly html.tmpl and plaintext.tmpl.
func NewRenderer() (*Renderer, error) {
	return newRenderer(templateFS)
}

func newRenderer(fsys fs.FS) (*Renderer, error) {
	groups, err := fs.ReadDir(fsys, templateRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read email templates directory: %w", err)
	}

	r := &Renderer{templates: make(map[string]*Template)}
	for _, group := range groups {
		if !group.IsDir() {
			continue
		}

		groupPath := path.Join(templateRoot, group.Name())
		entries, err := fs.ReadDir(fsys, groupPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read email template group %s: %w", group.Name(), err)
		}
		if len(entries) != 2 {
			return nil, fmt.Errorf("invalid email template group %s: must contain exactly two files (HTML and plaintext)", group.Name())
		}

		html, err := template.ParseFS(fsys, path.Join(groupPath, "html.tmpl"))
		if err != nil {
			return nil, fmt.Errorf("parse %s html template: %w", group.Name(), err)
		}
		text, err := ttemplate.ParseFS(fsys, path.Join(groupPath, "plaintext.tmpl"))
		if err != nil {
			return nil, fmt.Errorf("parse %s plaintext template: %w", group.Name(), err)
		}

		r.templates[group.Name()] = &Template{HTML: html, Plaintext: text}
	}

	if len(r.templates) == 0 {
		return nil, fmt.Errorf("no email templates found")
	}
	return r, nil
}

// Render executes both versions of the named template.
func (r *Renderer) Render(name string, data any) (string, string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", "", fmt.Errorf("template %s not found", name)
	}

	var htmlBuf bytes.Buffer
	if err := tmpl.HTML.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute %s html template: %w", name, err)
	}

	var textBuf bytes.Buffer
	if err := tmpl.Plaintext.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute %s plaintext template: %w", name, err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}
