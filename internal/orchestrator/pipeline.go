// Package orchestrator runs the two request flows of the demo against the remote endpoint.
package orchestrator

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/koios/jokeview/internal/eventloop"
	"github.com/koios/jokeview/internal/presentation"
	"github.com/koios/jokeview/internal/render"
	"github.com/koios/jokeview/pkg/models"
	"go.uber.org/zap"
)

// State is the lifecycle position of a run
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateResponseReceived
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateResponseReceived:
		return "response_received"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is the final result of a run
type Outcome struct {
	RunID    string
	Mode     models.ViewMode
	State    State
	Kind     ErrorKind
	Err      error
	Duration time.Duration
}

// Status describes the most recent run
type Status struct {
	RunID string `json:"run_id,omitempty"`
	Mode  string `json:"mode,omitempty"`
	State string `json:"state"`
	Kind  string `json:"error_kind,omitempty"`
	Error string `json:"error,omitempty"`
}

// Running reports whether the run is still waiting on the endpoint
func (s Status) Running() bool {
	return s.State == StateRequesting.String() || s.State == StateResponseReceived.String()
}

type run struct {
	id      string
	mode    models.ViewMode
	state   State
	started time.Time
	ended   bool
	result  *Promise[Outcome]
	resolve func(Outcome, error)
}

// Pipeline fetches the endpoint and renders the response into the port.
// Every page write happens on the event loop.
type Pipeline struct {
	port     presentation.Port
	table    *render.Table
	toggler  *render.Toggler
	loop     *eventloop.Loop
	client   *http.Client
	endpoint string
	logger   *zap.Logger

	mu      sync.Mutex
	current *run
	last    Outcome
}

// NewPipeline creates a pipeline writing into port
func NewPipeline(port presentation.Port, loop *eventloop.Loop, client *http.Client, endpoint string, logger *zap.Logger) *Pipeline {
	if client == nil {
		client = http.DefaultClient
	}
	return &Pipeline{
		port:     port,
		table:    render.NewTable(port),
		toggler:  render.NewToggler(port),
		loop:     loop,
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Endpoint returns the url the pipeline fetches
func (p *Pipeline) Endpoint() string {
	return p.endpoint
}

// Trigger starts a run in the given mode. The returned promise settles with
// the outcome once the run is loaded or has failed.
func (p *Pipeline) Trigger(mode models.ViewMode) (*Promise[Outcome], error) {
	p.mu.Lock()
	if p.current != nil {
		p.mu.Unlock()
		return nil, ErrInFlight
	}
	result, resolve := NewPromise[Outcome](p.loop)
	r := &run{
		id:      uuid.NewString(),
		mode:    mode,
		state:   StateRequesting,
		started: time.Now(),
		result:  result,
		resolve: resolve,
	}
	p.current = r
	p.mu.Unlock()

	p.logger.Info("Starting request",
		zap.String("run_id", r.id),
		zap.String("mode", mode.String()),
		zap.String("endpoint", p.endpoint))

	start := p.startCallback
	if mode == models.ViewPromise {
		start = p.startPromise
	}

	if err := p.loop.Post(func() { start(r) }); err != nil {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
		return nil, fmt.Errorf("failed to schedule request: %w", err)
	}
	go p.watch(r)

	return r.result, nil
}

// Pending returns the number of continuations waiting on the event loop
func (p *Pipeline) Pending() int {
	return p.loop.Pending()
}

// Status returns the state of the current run, or the outcome of the last one
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r := p.current; r != nil {
		return Status{RunID: r.id, Mode: r.mode.String(), State: r.state.String()}
	}
	if p.last.RunID == "" {
		return Status{State: StateIdle.String()}
	}

	s := Status{RunID: p.last.RunID, Mode: p.last.Mode.String(), State: p.last.State.String()}
	if p.last.Err != nil {
		s.Kind = p.last.Kind.String()
		s.Error = p.last.Err.Error()
	}
	return s
}

func (p *Pipeline) startCallback(r *run) {
	if err := p.toggler.StartSpinner(); err != nil {
		p.fail(r, err)
		return
	}

	req := NewRequest(p.client, p.loop)
	req.Open(http.MethodGet, p.endpoint)
	req.OnLoad = func() {
		if err := p.port.SetText(models.TargetRawText, req.Response); err != nil {
			p.fail(r, err)
			return
		}
		if err := p.port.SetText(models.TargetRawType, TypeLabel(req.Response)); err != nil {
			p.fail(r, err)
			return
		}

		payload, err := models.ParsePayload([]byte(req.Response))
		if err != nil {
			p.fail(r, malformedJSON(err))
			return
		}
		p.finish(r, payload)
	}
	req.OnError = func(err error) {
		p.fail(r, err)
	}

	if err := req.Send(); err != nil {
		p.fail(r, networkError(err))
	}
}

func (p *Pipeline) startPromise(r *run) {
	if err := p.toggler.StartSpinner(); err != nil {
		p.fail(r, err)
		return
	}

	body := Chain(Fetch(p.client, p.loop, p.endpoint), func(resp *Response) *Promise[models.Payload] {
		p.setState(r, StateResponseReceived)

		for _, w := range []struct {
			target models.Target
			text   string
		}{
			{models.TargetRawText, resp.String()},
			{models.TargetRawType, TypeLabel(resp)},
			{models.TargetDetailText, resp.Describe()},
		} {
			if err := p.port.SetText(w.target, w.text); err != nil {
				resp.Close()
				return Rejected[models.Payload](p.loop, err)
			}
		}

		return resp.JSON()
	})

	body.Handle(func(payload models.Payload) {
		p.finish(r, payload)
	}, func(err error) {
		p.fail(r, err)
	})
}

// finish is the render tail shared by both flows
func (p *Pipeline) finish(r *run, payload models.Payload) {
	steps := []func() error{
		func() error { return p.port.SetText(models.TargetParsedText, payload.String()) },
		func() error { return p.port.SetText(models.TargetParsedType, TypeLabel(payload)) },
		func() error { return p.table.Render(payload) },
		p.toggler.RevealOutput,
		func() error { return p.toggler.ShowCodePanel(r.mode) },
		func() error { return p.toggler.SetDetailVisible(r.mode == models.ViewPromise) },
		p.toggler.StopSpinner,
	}

	for _, step := range steps {
		if err := step(); err != nil {
			p.fail(r, err)
			return
		}
	}

	if !p.complete(r, StateLoaded, nil) {
		return
	}
	p.logger.Info("Request rendered",
		zap.String("run_id", r.id),
		zap.String("mode", r.mode.String()),
		zap.Int("fields", payload.Len()))
}

// fail ends the run without touching the page further, so the spinner stays active
func (p *Pipeline) fail(r *run, err error) {
	if !p.complete(r, StateFailed, err) {
		return
	}
	p.logger.Error("Request failed",
		zap.String("run_id", r.id),
		zap.String("mode", r.mode.String()),
		zap.String("error_kind", KindOf(err).String()),
		zap.Error(err))
}

// watch fails a run whose continuations can no longer be delivered
func (p *Pipeline) watch(r *run) {
	select {
	case <-r.result.done:
	case <-p.loop.Done():
		p.fail(r, fmt.Errorf("run abandoned: %w", eventloop.ErrStopped))
	}
}

func (p *Pipeline) setState(r *run, s State) {
	p.mu.Lock()
	r.state = s
	p.mu.Unlock()
}

// complete records the outcome of r. It reports false if r had already ended.
func (p *Pipeline) complete(r *run, s State, err error) bool {
	out := Outcome{
		RunID:    r.id,
		Mode:     r.mode,
		State:    s,
		Kind:     KindOf(err),
		Err:      err,
		Duration: time.Since(r.started),
	}

	p.mu.Lock()
	if r.ended {
		p.mu.Unlock()
		return false
	}
	r.ended = true
	r.state = s
	if p.current == r {
		p.current = nil
	}
	p.last = out
	p.mu.Unlock()

	r.resolve(out, nil)
	return true
}
