package service

import (
	"context"
	"sync"
)

// Fake is an in-memory Submitter for tests. When Gate is set, Submit blocks
// until a value is received from it.
type Fake struct {
	Err  error
	Gate chan struct{}

	mu       sync.Mutex
	calls    int
	payloads []map[string]string
	started  chan struct{}
}

// NewFake creates a Fake that succeeds immediately
func NewFake() *Fake {
	return &Fake{started: make(chan struct{}, 16)}
}

// Submit records the payload and returns Err
func (f *Fake) Submit(ctx context.Context, fields map[string]string) error {
	f.mu.Lock()
	f.calls++
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	f.payloads = append(f.payloads, cp)
	f.mu.Unlock()

	select {
	case f.started <- struct{}{}:
	default:
	}

	if f.Gate != nil {
		<-f.Gate
	}
	return f.Err
}

// Started is signalled each time Submit is entered
func (f *Fake) Started() <-chan struct{} {
	return f.started
}

// Calls returns how many times Submit was called
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Last returns the most recent payload, or nil
func (f *Fake) Last() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return nil
	}
	return f.payloads[len(f.payloads)-1]
}
