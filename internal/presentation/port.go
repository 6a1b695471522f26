// Package presentation holds the page regions the rendering pipeline writes into.
package presentation

import (
	"errors"

	"github.com/koios/jokeview/pkg/models"
)

// ErrTargetMissing is returned when a named region does not exist on the page
var ErrTargetMissing = errors.New("target not found")

// Port is the set of page operations the rendering pipeline depends on
type Port interface {
	SetText(target models.Target, text string) error
	ClearRows(target models.Target) error
	AppendRow(target models.Target, cells ...string) error
	AddClass(target models.Target, class string) error
	RemoveClass(target models.Target, class string) error
}
