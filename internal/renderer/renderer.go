package renderer

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/plutto-bridge/views"
)

// Renderer implements Echo's render interface for the embedded HTML templates.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	templates, err := template.ParseFS(views.FS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: templates}, nil
}

// Render writes the named template to the response writer.
func (t *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}
