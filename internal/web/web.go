package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/gin-gonic/gin/render"

	"github.com/noah-isme/sma-siswa-web/internal/models"
	appErrors "github.com/noah-isme/sma-siswa-web/pkg/errors"
)

//go:embed templates static
var assets embed.FS

// Page names accepted by Renderer.
const (
	PageLogin     = "login"
	PageIndex     = "index"
	PageAbout     = "about"
	PageSiswa     = "siswa"
	PageAddSiswa  = "add-siswa"
	PageEditSiswa = "edit-siswa"
)

const (
	layoutMain  = "main.html"
	layoutLogin = "login.html"
)

var pageLayouts = map[string]string{
	PageLogin:     layoutLogin,
	PageIndex:     layoutMain,
	PageAbout:     layoutMain,
	PageSiswa:     layoutMain,
	PageAddSiswa:  layoutMain,
	PageEditSiswa: layoutMain,
}

// Page is the view model shared by every template.
type Page struct {
	Title    string
	Active   string
	Username string
	Siswa    []models.Siswa
	Actions  bool
	Flash    []string
	Errors   appErrors.ValidationErrors
	Form     models.SiswaForm
}

// Renderer implements gin's render.HTMLRender over the embedded templates.
// Each page is parsed together with its layout and the shared partials.
type Renderer struct {
	pages map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

// NewRenderer parses every page template up front.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}

	pages := make(map[string]*template.Template, len(pageLayouts))
	for name, layout := range pageLayouts {
		tmpl, err := template.New(layout).Funcs(funcs).ParseFS(assets,
			path.Join("templates/layouts", layout),
			"templates/partials/*.html",
			path.Join("templates/pages", name+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Instance returns the render for page name. Unknown pages fail at render time.
func (r *Renderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		return missingPage{name: name}
	}
	return render.HTML{Template: tmpl, Name: pageLayouts[name], Data: data}
}

type missingPage struct {
	name string
}

func (m missingPage) Render(http.ResponseWriter) error {
	return fmt.Errorf("template %q not registered", m.name)
}

func (missingPage) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// Static exposes the embedded static directory for gin's StaticFS.
func Static() http.FileSystem {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
