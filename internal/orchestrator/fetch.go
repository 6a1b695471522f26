package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/koios/jokeview/internal/eventloop"
	"github.com/koios/jokeview/pkg/models"
)

// Response is the promise-style view of an HTTP response whose body has not been read yet
type Response struct {
	loop       *eventloop.Loop
	raw        *http.Response
	requestURL string

	mu       sync.Mutex
	bodyUsed bool
}

// Fetch issues a GET for url and returns a promise of the response headers
func Fetch(client *http.Client, loop *eventloop.Loop, url string) *Promise[*Response] {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return Rejected[*Response](loop, fmt.Errorf("failed to build request: %w", err))
	}

	// compared against the final url, so both come from url.URL.String
	requested := req.URL.String()

	p, settle := NewPromise[*Response](loop)
	go func() {
		resp, err := client.Do(req)
		if err != nil {
			settle(nil, networkError(err))
			return
		}
		settle(&Response{loop: loop, raw: resp, requestURL: requested}, nil)
	}()

	return p
}

// Type is the protocol the response was served over
func (r *Response) Type() string { return r.raw.Proto }

// URL is the final url after redirects
func (r *Response) URL() string {
	if r.raw.Request != nil && r.raw.Request.URL != nil {
		return r.raw.Request.URL.String()
	}
	return r.requestURL
}

// Redirected reports whether the final url differs from the requested one
func (r *Response) Redirected() bool { return r.URL() != r.requestURL }

// Status is the numeric status code
func (r *Response) Status() int { return r.raw.StatusCode }

// StatusText is the reason phrase of the status code
func (r *Response) StatusText() string { return http.StatusText(r.raw.StatusCode) }

// OK reports a 2xx status
func (r *Response) OK() bool { return r.raw.StatusCode >= 200 && r.raw.StatusCode < 300 }

// Header returns the response headers
func (r *Response) Header() http.Header { return r.raw.Header }

// BodyUsed reports whether the body has been consumed
func (r *Response) BodyUsed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodyUsed
}

func (r *Response) String() string {
	return fmt.Sprintf("Response{status: %s, url: %s}", r.raw.Status, r.URL())
}

// Describe renders the response metadata as the multi-line detail block
func (r *Response) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "type: %s\n", r.Type())
	fmt.Fprintf(&sb, "url: %s\n", r.URL())
	fmt.Fprintf(&sb, "redirected: %t\n", r.Redirected())
	fmt.Fprintf(&sb, "status: %d\n", r.Status())
	fmt.Fprintf(&sb, "statusText: %s\n", r.StatusText())
	fmt.Fprintf(&sb, "ok: %t\n", r.OK())
	fmt.Fprintf(&sb, "body: %T\n", r.raw.Body)
	fmt.Fprintf(&sb, "bodyUsed: %t\n", r.BodyUsed())
	fmt.Fprintf(&sb, "headers: %s", formatHeader(r.raw.Header))
	return sb.String()
}

// Text reads the whole body as a string
func (r *Response) Text() *Promise[string] {
	p, settle := NewPromise[string](r.loop)

	body, err := r.takeBody()
	if err != nil {
		settle("", err)
		return p
	}

	go func() {
		defer body.Close()
		data, err := io.ReadAll(body)
		if err != nil {
			settle("", networkError(fmt.Errorf("failed to read body: %w", err)))
			return
		}
		settle(string(data), nil)
	}()

	return p
}

// JSON reads the body and decodes it as a JSON object
func (r *Response) JSON() *Promise[models.Payload] {
	return Then(r.Text(), func(text string) (models.Payload, error) {
		payload, err := models.ParsePayload([]byte(text))
		if err != nil {
			return models.Payload{}, malformedJSON(err)
		}
		return payload, nil
	})
}

// Close releases the body if it has not been read
func (r *Response) Close() error {
	body, err := r.takeBody()
	if err != nil {
		return nil
	}
	return body.Close()
}

func (r *Response) takeBody() (io.ReadCloser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bodyUsed {
		return nil, errors.New("body already used")
	}
	r.bodyUsed = true
	return r.raw.Body, nil
}

func formatHeader(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(h[k], ", "))
	}
	return strings.Join(parts, "; ")
}

// TypeLabel names the Go type of v for display
func TypeLabel(v any) string {
	return fmt.Sprintf("%T", v)
}
