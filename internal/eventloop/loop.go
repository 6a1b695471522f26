// Package eventloop runs continuations one at a time, in the order they were posted.
package eventloop

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrStopped is returned when posting to a loop that has been stopped
var ErrStopped = errors.New("event loop is stopped")

// Loop is a single worker draining an unbounded FIFO of tasks.
// Tasks may post further tasks without blocking.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// New creates a loop. Call Start before posting work that must run.
func New(logger *zap.Logger) *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start launches the worker goroutine
func (l *Loop) Start() {
	l.once.Do(func() {
		l.logger.Info("Starting event loop")
		go l.run()
	})
}

// Stop refuses new tasks, runs everything already queued and waits for the worker to exit
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.stopped = true
	l.mu.Unlock()

	l.logger.Info("Stopping event loop")
	l.Start()
	l.signal()
	<-l.done
	l.logger.Info("Event loop stopped")
}

// Post queues a task
func (l *Loop) Post(task func()) error {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		l.logger.Warn("Dropping task posted after the event loop stopped")
		return ErrStopped
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	l.signal()
	return nil
}

// Done is closed once the loop has stopped and its queue is drained
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending returns the number of queued tasks
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			stopped := l.stopped
			l.mu.Unlock()
			if stopped {
				return
			}
			<-l.wake
			continue
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.runTask(task)
	}
}

func (l *Loop) runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Event loop task panicked", zap.Error(fmt.Errorf("panic: %v", r)))
		}
	}()
	task()
}
