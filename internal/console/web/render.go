// Package web содержит встроенные HTML-шаблоны консоли и их рендер.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/xela07ax/authconsole/internal/chart"
	"github.com/xela07ax/authconsole/internal/domain"
	"github.com/xela07ax/authconsole/internal/timefmt"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Страницы, которые умеет рисовать Renderer.
const (
	PageOverview = "overview"
	PageUsers    = "users"
	PageUser     = "user"
	PageSessions = "sessions"
	PageAudit    = "audit"
	PageLogin    = "login"
	PageError    = "error"
)

var pages = []string{PageOverview, PageUsers, PageUser, PageSessions, PageAudit, PageLogin, PageError}

// Renderer держит разобранные шаблоны: layout + страница на каждое имя.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer(f *timefmt.Formatter, sessionLifetimeDays int) (*Renderer, error) {
	funcs := template.FuncMap{
		"date": func(ts domain.TimestampValue) string {
			return f.Display(ts, 0)
		},
		"expires": func(ts domain.TimestampValue) string {
			return f.Expiry(ts, sessionLifetimeDays)
		},
		// Цвета и градиенты собираются из палитры chart, пользовательских строк в них нет
		"gradient": func(p chart.Pie) template.CSS {
			return template.CSS(p.Gradient())
		},
		"color": func(ref string) template.CSS {
			return template.CSS(ref)
		},
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v)
		},
		"sessionsTable": func(uid string, sessions []domain.Session, actions bool, redirect string) SessionsTable {
			return SessionsTable{UID: uid, Sessions: sessions, Actions: actions, Redirect: redirect}
		},
	}

	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		t, err := clone.ParseFS(templatesFS, path.Join("templates", name+".html"))
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render пишет страницу целиком: при ошибке шаблона клиент не получит половину HTML.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("web: unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("web: render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static — стили и прочие файлы под /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
