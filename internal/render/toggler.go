package render

import (
	"fmt"

	"github.com/koios/jokeview/internal/presentation"
	"github.com/koios/jokeview/pkg/models"
)

// Toggler flips the visibility classes of the code panels, the detail panel and the output sections
type Toggler struct {
	port presentation.Port
}

// NewToggler creates a toggler over the port
func NewToggler(port presentation.Port) *Toggler {
	return &Toggler{port: port}
}

// ShowCodePanel reveals the panel of mode and hides the other one
func (t *Toggler) ShowCodePanel(mode models.ViewMode) error {
	other := models.ViewPromise
	if mode == models.ViewPromise {
		other = models.ViewCallback
	}

	if err := t.setVisible(other.CodePanel(), false); err != nil {
		return err
	}
	return t.setVisible(mode.CodePanel(), true)
}

// SetDetailVisible shows or hides the detail panel
func (t *Toggler) SetDetailVisible(visible bool) error {
	return t.setVisible(models.TargetDetailPanel, visible)
}

// ShowDetail is SetDetailVisible(true)
func (t *Toggler) ShowDetail() error {
	return t.SetDetailVisible(true)
}

// RevealOutput unhides every output section
func (t *Toggler) RevealOutput() error {
	for _, section := range models.OutputSections {
		if err := t.port.RemoveClass(section, models.ClassHidden); err != nil {
			return fmt.Errorf("failed to reveal %s: %w", section, err)
		}
	}
	return nil
}

// StartSpinner marks the loading indicator active
func (t *Toggler) StartSpinner() error {
	return t.port.AddClass(models.TargetSpinner, models.ClassSpinnerActive)
}

// StopSpinner marks the loading indicator inactive
func (t *Toggler) StopSpinner() error {
	return t.port.RemoveClass(models.TargetSpinner, models.ClassSpinnerActive)
}

func (t *Toggler) setVisible(target models.Target, visible bool) error {
	remove, add := models.ClassVisible, models.ClassHidden
	if visible {
		remove, add = models.ClassHidden, models.ClassVisible
	}

	if err := t.port.RemoveClass(target, remove); err != nil {
		return fmt.Errorf("failed to update %s: %w", target, err)
	}
	if err := t.port.AddClass(target, add); err != nil {
		return fmt.Errorf("failed to update %s: %w", target, err)
	}
	return nil
}
