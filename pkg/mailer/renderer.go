package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Renderer executes HTML templates from a filesystem. Parsed
// templates are cached; the cache stores parsed structure only,
// never rendered output.
type Renderer struct {
	fs     fs.FS
	dir    string
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// RendererConfig configures template lookup.
type RendererConfig struct {
	TemplateDir string // Default: "."
}

// NewRenderer creates a renderer reading templates from the root of filesystem.
func NewRenderer(filesystem fs.FS) *Renderer {
	return NewRendererWithConfig(filesystem, RendererConfig{})
}

// NewRendererWithConfig creates a renderer with custom config.
func NewRendererWithConfig(filesystem fs.FS, cfg RendererConfig) *Renderer {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = "."
	}

	return &Renderer{
		fs:     filesystem,
		dir:    cfg.TemplateDir,
		md:     goldmark.New(),
		policy: bluemonday.UGCPolicy(),
		cache:  make(map[string]*template.Template),
	}
}

// Render executes the named template against data and returns the HTML.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tmpl, err := r.getTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}
	return buf.String(), nil
}

// getTemplate returns a cached template or parses and caches it.
func (r *Renderer) getTemplate(name string) (*template.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if tmpl, ok := r.cache[name]; ok {
		return tmpl, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"markdown": r.markdown,
	}).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	r.cache[name] = tmpl
	return tmpl, nil
}

// markdown converts free-text message fields to sanitized HTML, so
// operators can use markdown in notification and alert bodies.
func (r *Renderer) markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(r.policy.Sanitize(buf.String()))
}
