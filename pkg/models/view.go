package models

import "fmt"

// ViewMode selects which code sample panel is shown
type ViewMode int

const (
	ViewCallback ViewMode = iota
	ViewPromise
)

// String returns the route name of the mode
func (m ViewMode) String() string {
	switch m {
	case ViewCallback:
		return "callback"
	case ViewPromise:
		return "promise"
	default:
		return fmt.Sprintf("ViewMode(%d)", int(m))
	}
}

// ParseViewMode maps a route name back to a ViewMode
func ParseViewMode(s string) (ViewMode, error) {
	switch s {
	case "callback":
		return ViewCallback, nil
	case "promise":
		return ViewPromise, nil
	default:
		return 0, fmt.Errorf("unknown view mode: %s", s)
	}
}

// Target names a region of the page
type Target string

const (
	TargetEndpointLink Target = "endpoint-link"
	TargetRawText      Target = "raw-text"
	TargetRawType      Target = "raw-type"
	TargetParsedText   Target = "parsed-text"
	TargetParsedType   Target = "parsed-type"
	TargetTableBody    Target = "table-body"
	TargetDetailPanel  Target = "detail-panel"
	TargetDetailText   Target = "detail-text"
	TargetCodeCallback Target = "code-callback"
	TargetCodePromise  Target = "code-promise"
	TargetSpinner      Target = "spinner"

	TargetSectionRaw    Target = "section-raw"
	TargetSectionParsed Target = "section-parsed"
	TargetSectionTable  Target = "section-table"
)

// OutputSections are the regions revealed once a response has been rendered
var OutputSections = []Target{TargetSectionRaw, TargetSectionParsed, TargetSectionTable}

// CodePanel returns the code sample region belonging to the mode
func (m ViewMode) CodePanel() Target {
	if m == ViewPromise {
		return TargetCodePromise
	}
	return TargetCodeCallback
}

// Visibility classes
const (
	ClassHidden        = "hidden"
	ClassVisible       = "visible"
	ClassSpinnerActive = "loader-active"
)
