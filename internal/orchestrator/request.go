package orchestrator

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/koios/jokeview/internal/eventloop"
)

// Request is a callback-style HTTP request. Open it, set OnLoad, then Send.
// OnLoad and OnError run on the event loop once the whole body has arrived.
type Request struct {
	client *http.Client
	loop   *eventloop.Loop

	method string
	url    string
	sent   bool

	OnLoad  func()
	OnError func(error)

	Status     int
	StatusText string
	Response   string
}

// NewRequest creates a request whose callbacks are delivered on loop
func NewRequest(client *http.Client, loop *eventloop.Loop) *Request {
	if client == nil {
		client = http.DefaultClient
	}
	return &Request{client: client, loop: loop}
}

// Open sets the method and url of the request
func (r *Request) Open(method, url string) {
	r.method = method
	r.url = url
}

// Send issues the request without blocking
func (r *Request) Send() error {
	if r.method == "" || r.url == "" {
		return errors.New("request is not open")
	}
	if r.sent {
		return errors.New("request already sent")
	}
	r.sent = true

	req, err := http.NewRequest(r.method, r.url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	go func() {
		status, body, err := r.do(req)
		// a stopped loop logs and drops the callbacks
		_ = r.loop.Post(func() {
			if err != nil {
				if r.OnError != nil {
					r.OnError(err)
				}
				return
			}
			r.Status = status
			r.StatusText = http.StatusText(status)
			r.Response = body
			if r.OnLoad != nil {
				r.OnLoad()
			}
		})
	}()

	return nil
}

func (r *Request) do(req *http.Request) (int, string, error) {
	resp, err := r.client.Do(req)
	if err != nil {
		return 0, "", networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", networkError(fmt.Errorf("failed to read body: %w", err))
	}
	return resp.StatusCode, string(body), nil
}
