package presentation

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/koios/jokeview/pkg/models"
)

//go:embed templates/index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// View is the data handed to the page template. The page reloads itself
// while InFlight is set.
type View struct {
	Snapshot
	CallbackCode string
	PromiseCode  string
	Status       string
	InFlight     bool
}

// Region returns the state of a region by name
func (v View) Region(name string) RegionState {
	return v.Regions[models.Target(name)]
}

// Class returns the space separated class list of a region
func (v View) Class(name string) string {
	return strings.Join(v.Regions[models.Target(name)].Classes, " ")
}

// RenderHTML writes the page for the given view
func RenderHTML(w io.Writer, v View) error {
	if err := indexTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
