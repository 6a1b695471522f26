package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/koios/jokeview/internal/eventloop"
	"github.com/koios/jokeview/internal/presentation"
	"github.com/koios/jokeview/pkg/models"
	"go.uber.org/zap"
)

const jokeBody = `{"setup":"Why?","punchline":"Because.","id":1}`

var jokeRows = [][]string{{"setup", "Why?"}, {"punchline", "Because."}, {"id", "1"}}

// stubEndpoint serves whatever body is currently stored
type stubEndpoint struct {
	body atomic.Value
	hits atomic.Int32
}

func newStubEndpoint(t *testing.T, body string) (*stubEndpoint, *httptest.Server) {
	t.Helper()
	stub := &stubEndpoint{}
	stub.body.Store(body)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.hits.Add(1)
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(stub.body.Load().(string)))
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func setupPipeline(t *testing.T, port presentation.Port, endpoint string) *Pipeline {
	t.Helper()
	loop := eventloop.New(zap.NewNop())
	loop.Start()
	t.Cleanup(loop.Stop)
	return NewPipeline(port, loop, &http.Client{}, endpoint, zap.NewNop())
}

func trigger(t *testing.T, p *Pipeline, mode models.ViewMode) Outcome {
	t.Helper()
	result, err := p.Trigger(mode)
	if err != nil {
		t.Fatalf("Trigger(%s): %v", mode, err)
	}
	return awaitOutcome(t, result)
}

func awaitOutcome(t *testing.T, result *Promise[Outcome]) Outcome {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := result.Await(ctx)
	if err != nil {
		t.Fatalf("run did not finish: %v", err)
	}
	return out
}

func TestPipeline_CallbackFlow(t *testing.T) {
	_, srv := newStubEndpoint(t, jokeBody)
	page := presentation.NewPage(srv.URL)
	p := setupPipeline(t, page, srv.URL)

	out := trigger(t, p, models.ViewCallback)
	if out.State != StateLoaded || out.Err != nil {
		t.Fatalf("outcome = %+v, want loaded", out)
	}

	if diff := cmp.Diff(jokeRows, page.Rows(models.TargetTableBody)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if got := page.Text(models.TargetRawText); got != jokeBody {
		t.Errorf("raw-text = %q, want body", got)
	}
	if got := page.Text(models.TargetRawType); got != "string" {
		t.Errorf("raw-type = %q, want string", got)
	}
	if got := page.Text(models.TargetParsedType); got != "models.Payload" {
		t.Errorf("parsed-type = %q, want models.Payload", got)
	}
	if !page.HasClass(models.TargetCodeCallback, models.ClassVisible) || !page.HasClass(models.TargetCodePromise, models.ClassHidden) {
		t.Error("expected callback panel visible and promise panel hidden")
	}
	if !page.HasClass(models.TargetDetailPanel, models.ClassHidden) {
		t.Error("expected detail panel hidden")
	}
	if page.HasClass(models.TargetSpinner, models.ClassSpinnerActive) {
		t.Error("expected spinner inactive")
	}
	for _, section := range models.OutputSections {
		if page.HasClass(section, models.ClassHidden) {
			t.Errorf("%s still hidden", section)
		}
	}
}

func TestPipeline_PromiseFlow(t *testing.T) {
	_, srv := newStubEndpoint(t, jokeBody)
	page := presentation.NewPage(srv.URL)
	p := setupPipeline(t, page, srv.URL)

	out := trigger(t, p, models.ViewPromise)
	if out.State != StateLoaded || out.Err != nil {
		t.Fatalf("outcome = %+v, want loaded", out)
	}

	if diff := cmp.Diff(jokeRows, page.Rows(models.TargetTableBody)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if !page.HasClass(models.TargetCodePromise, models.ClassVisible) || !page.HasClass(models.TargetCodeCallback, models.ClassHidden) {
		t.Error("expected promise panel visible and callback panel hidden")
	}
	if !page.HasClass(models.TargetDetailPanel, models.ClassVisible) || page.HasClass(models.TargetDetailPanel, models.ClassHidden) {
		t.Error("expected detail panel visible")
	}
	if page.HasClass(models.TargetSpinner, models.ClassSpinnerActive) {
		t.Error("expected spinner inactive")
	}

	detail := page.Text(models.TargetDetailText)
	for _, want := range []string{"status: 200", "ok: true", "bodyUsed: false", "redirected: false", "Content-Type: application/json"} {
		if !strings.Contains(detail, want) {
			t.Errorf("detail block missing %q:\n%s", want, detail)
		}
	}
	if got := page.Text(models.TargetRawType); got != "*orchestrator.Response" {
		t.Errorf("raw-type = %q", got)
	}
}

func TestPipeline_SwitchingModes(t *testing.T) {
	_, srv := newStubEndpoint(t, jokeBody)
	page := presentation.NewPage(srv.URL)
	p := setupPipeline(t, page, srv.URL)

	trigger(t, p, models.ViewPromise)
	trigger(t, p, models.ViewCallback)

	if !page.HasClass(models.TargetCodeCallback, models.ClassVisible) || page.HasClass(models.TargetCodePromise, models.ClassVisible) {
		t.Error("expected only the callback panel visible")
	}
	if !page.HasClass(models.TargetDetailPanel, models.ClassHidden) {
		t.Error("expected detail panel hidden after callback run")
	}
}

func TestPipeline_MalformedJSONLeavesPageStuck(t *testing.T) {
	for _, mode := range []models.ViewMode{models.ViewCallback, models.ViewPromise} {
		t.Run(mode.String(), func(t *testing.T) {
			stub, srv := newStubEndpoint(t, jokeBody)
			page := presentation.NewPage(srv.URL)
			p := setupPipeline(t, page, srv.URL)

			trigger(t, p, mode)
			before := page.Rows(models.TargetTableBody)

			stub.body.Store("this is not json")
			out := trigger(t, p, mode)

			if out.State != StateFailed {
				t.Fatalf("State = %s, want failed", out.State)
			}
			if out.Kind != KindMalformedJSON {
				t.Errorf("Kind = %s, want malformed_json", out.Kind)
			}
			if diff := cmp.Diff(before, page.Rows(models.TargetTableBody)); diff != "" {
				t.Errorf("table changed on invalid fetch (-before +after):\n%s", diff)
			}
			if !page.HasClass(models.TargetSpinner, models.ClassSpinnerActive) {
				t.Error("expected spinner to stay active after failure")
			}

			status := p.Status()
			if status.State != "failed" || status.Kind != "malformed_json" {
				t.Errorf("Status() = %+v", status)
			}
		})
	}
}

func TestPipeline_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	for _, mode := range []models.ViewMode{models.ViewCallback, models.ViewPromise} {
		t.Run(mode.String(), func(t *testing.T) {
			page := presentation.NewPage(url)
			p := setupPipeline(t, page, url)

			out := trigger(t, p, mode)
			if out.State != StateFailed || out.Kind != KindNetworkFailure {
				t.Fatalf("outcome = %+v, want network failure", out)
			}
			if !page.HasClass(models.TargetSpinner, models.ClassSpinnerActive) {
				t.Error("expected spinner to stay active after failure")
			}
			if n := len(page.Rows(models.TargetTableBody)); n != 0 {
				t.Errorf("got %d rows, want 0", n)
			}
		})
	}
}

func TestPipeline_NonOKStatusStillRenders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"type":"error","message":"joke not found"}`))
	}))
	defer srv.Close()

	page := presentation.NewPage(srv.URL)
	p := setupPipeline(t, page, srv.URL)

	out := trigger(t, p, models.ViewPromise)
	if out.State != StateLoaded {
		t.Fatalf("State = %s, want loaded", out.State)
	}
	if !strings.Contains(page.Text(models.TargetDetailText), "ok: false") {
		t.Errorf("detail block should report ok: false:\n%s", page.Text(models.TargetDetailText))
	}
	if n := len(page.Rows(models.TargetTableBody)); n != 2 {
		t.Errorf("got %d rows, want 2", n)
	}
}

func TestPipeline_InFlightGuard(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(jokeBody))
	}))
	defer srv.Close()

	page := presentation.NewPage(srv.URL)
	p := setupPipeline(t, page, srv.URL)

	first, err := p.Trigger(models.ViewCallback)
	if err != nil {
		t.Fatalf("first Trigger: %v", err)
	}
	if _, err := p.Trigger(models.ViewPromise); !errors.Is(err, ErrInFlight) {
		t.Errorf("second Trigger error = %v, want ErrInFlight", err)
	}
	if s := p.Status(); s.State != "requesting" || s.Mode != "callback" {
		t.Errorf("Status() while in flight = %+v", s)
	}

	close(release)
	if out := awaitOutcome(t, first); out.State != StateLoaded {
		t.Fatalf("first run = %+v", out)
	}

	out := trigger(t, p, models.ViewPromise)
	if out.State != StateLoaded {
		t.Errorf("run after release = %+v", out)
	}
}

func TestPipeline_LoopStoppedMidRun(t *testing.T) {
	for _, mode := range []models.ViewMode{models.ViewCallback, models.ViewPromise} {
		t.Run(mode.String(), func(t *testing.T) {
			release := make(chan struct{})
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				<-release
				w.Write([]byte(jokeBody))
			}))
			defer srv.Close()
			defer close(release)

			loop := eventloop.New(zap.NewNop())
			loop.Start()
			page := presentation.NewPage(srv.URL)
			p := NewPipeline(page, loop, &http.Client{}, srv.URL, zap.NewNop())

			result, err := p.Trigger(mode)
			if err != nil {
				t.Fatalf("Trigger: %v", err)
			}
			loop.Stop()

			out := awaitOutcome(t, result)
			if out.State != StateFailed || !errors.Is(out.Err, eventloop.ErrStopped) {
				t.Errorf("outcome = %+v, want failed with ErrStopped", out)
			}
			if s := p.Status(); s.State != "failed" {
				t.Errorf("Status() = %+v, want failed", s)
			}
			if _, err := p.Trigger(mode); err == nil {
				t.Error("expected Trigger to fail on a stopped loop")
			}
		})
	}
}

func TestPipeline_MissingTarget(t *testing.T) {
	_, srv := newStubEndpoint(t, jokeBody)
	page := presentation.NewPageWith(models.TargetSpinner, models.TargetRawText, models.TargetRawType)
	p := setupPipeline(t, page, srv.URL)

	out := trigger(t, p, models.ViewCallback)
	if out.State != StateFailed || out.Kind != KindTargetMissing {
		t.Fatalf("outcome = %+v, want target missing", out)
	}
	if !errors.Is(out.Err, presentation.ErrTargetMissing) {
		t.Errorf("Err = %v, want ErrTargetMissing", out.Err)
	}
}

func TestPipeline_StatusIdle(t *testing.T) {
	p := setupPipeline(t, presentation.NewPage(""), "http://127.0.0.1:0")
	if s := p.Status(); s.State != "idle" || s.RunID != "" {
		t.Errorf("Status() = %+v, want idle", s)
	}
}
