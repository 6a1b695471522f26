package presentation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/koios/jokeview/pkg/models"
)

type region struct {
	text    string
	rows    [][]string
	classes map[string]bool
}

// Page is an in-memory Port whose state can be snapshotted for rendering.
// It is safe for concurrent use.
type Page struct {
	mu      sync.RWMutex
	regions map[models.Target]*region
	version uint64
}

// NewPage creates the page layout with every output region hidden
func NewPage(endpoint string) *Page {
	p := &Page{regions: make(map[models.Target]*region)}

	for _, t := range []models.Target{
		models.TargetEndpointLink,
		models.TargetRawText,
		models.TargetRawType,
		models.TargetParsedText,
		models.TargetParsedType,
		models.TargetTableBody,
		models.TargetDetailText,
		models.TargetSpinner,
	} {
		p.add(t)
	}

	for _, t := range append([]models.Target{
		models.TargetDetailPanel,
		models.TargetCodeCallback,
		models.TargetCodePromise,
	}, models.OutputSections...) {
		p.add(t, models.ClassHidden)
	}

	p.regions[models.TargetEndpointLink].text = endpoint
	return p
}

// NewPageWith creates a page containing only the given regions
func NewPageWith(targets ...models.Target) *Page {
	p := &Page{regions: make(map[models.Target]*region)}
	for _, t := range targets {
		p.add(t)
	}
	return p
}

func (p *Page) add(t models.Target, classes ...string) {
	r := &region{classes: make(map[string]bool)}
	for _, c := range classes {
		r.classes[c] = true
	}
	p.regions[t] = r
}

func (p *Page) lookup(t models.Target) (*region, error) {
	r, ok := p.regions[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTargetMissing, t)
	}
	return r, nil
}

// SetText replaces the text content of a region
func (p *Page) SetText(target models.Target, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, err := p.lookup(target)
	if err != nil {
		return err
	}
	r.text = text
	p.version++
	return nil
}

// ClearRows removes every row of a region
func (p *Page) ClearRows(target models.Target) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, err := p.lookup(target)
	if err != nil {
		return err
	}
	r.rows = nil
	p.version++
	return nil
}

// AppendRow adds a row of cells to a region
func (p *Page) AppendRow(target models.Target, cells ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, err := p.lookup(target)
	if err != nil {
		return err
	}
	r.rows = append(r.rows, append([]string(nil), cells...))
	p.version++
	return nil
}

// AddClass adds a class to a region
func (p *Page) AddClass(target models.Target, class string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, err := p.lookup(target)
	if err != nil {
		return err
	}
	r.classes[class] = true
	p.version++
	return nil
}

// RemoveClass removes a class from a region
func (p *Page) RemoveClass(target models.Target, class string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r, err := p.lookup(target)
	if err != nil {
		return err
	}
	delete(r.classes, class)
	p.version++
	return nil
}

// Text returns the text content of a region
func (p *Page) Text(target models.Target) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if r, ok := p.regions[target]; ok {
		return r.text
	}
	return ""
}

// Rows returns a copy of the rows of a region
func (p *Page) Rows(target models.Target) [][]string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.regions[target]
	if !ok {
		return nil
	}
	return copyRows(r.rows)
}

// HasClass reports whether a region carries a class
func (p *Page) HasClass(target models.Target, class string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	r, ok := p.regions[target]
	return ok && r.classes[class]
}

// RegionState is the serialisable state of one region
type RegionState struct {
	Text    string     `json:"text,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
	Classes []string   `json:"classes,omitempty"`
}

// Snapshot is a consistent copy of every region
type Snapshot struct {
	Version uint64                        `json:"version"`
	Regions map[models.Target]RegionState `json:"regions"`
}

// Snapshot copies the page state
func (p *Page) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		Version: p.version,
		Regions: make(map[models.Target]RegionState, len(p.regions)),
	}
	for t, r := range p.regions {
		classes := make([]string, 0, len(r.classes))
		for c := range r.classes {
			classes = append(classes, c)
		}
		sort.Strings(classes)
		s.Regions[t] = RegionState{
			Text:    r.text,
			Rows:    copyRows(r.rows),
			Classes: classes,
		}
	}
	return s
}

func copyRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
