// Package render writes parsed responses and view state into a presentation port.
package render

import (
	"fmt"

	"github.com/koios/jokeview/internal/presentation"
	"github.com/koios/jokeview/pkg/models"
)

// Table renders a payload as key/value rows
type Table struct {
	port   presentation.Port
	target models.Target
}

// NewTable creates a table renderer writing into the table-body region
func NewTable(port presentation.Port) *Table {
	return &Table{port: port, target: models.TargetTableBody}
}

// Render replaces every row with one row per payload field, in field order
func (t *Table) Render(p models.Payload) error {
	if err := t.port.ClearRows(t.target); err != nil {
		return fmt.Errorf("failed to clear table: %w", err)
	}

	for _, f := range p.Fields {
		if err := t.port.AppendRow(t.target, f.Key, f.Value.String()); err != nil {
			return fmt.Errorf("failed to append row %q: %w", f.Key, err)
		}
	}

	return nil
}
