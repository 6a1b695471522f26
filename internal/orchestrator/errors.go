package orchestrator

import (
	"errors"
	"fmt"

	"github.com/koios/jokeview/internal/presentation"
)

// ErrInFlight is returned when a run is triggered while another one is still requesting
var ErrInFlight = errors.New("a request is already in flight")

// ErrorKind classifies why a run failed
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNetworkFailure
	KindMalformedJSON
	KindTargetMissing
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetworkFailure:
		return "network_failure"
	case KindMalformedJSON:
		return "malformed_json"
	case KindTargetMissing:
		return "target_missing"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// KindError tags an error with its kind
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *KindError) Unwrap() error {
	return e.Err
}

func networkError(err error) error {
	return &KindError{Kind: KindNetworkFailure, Err: err}
}

func malformedJSON(err error) error {
	return &KindError{Kind: KindMalformedJSON, Err: err}
}

// KindOf returns the kind of err. Untagged errors count as network failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, presentation.ErrTargetMissing) {
		return KindTargetMissing
	}
	var ke *KindError
	if errors.As(err, &ke) {
		return ke.Kind
	}
	return KindNetworkFailure
}
