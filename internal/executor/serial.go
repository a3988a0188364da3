package executor

import (
	"context"
	"fmt"
)

// SerialExecutor funnels every execution through one worker goroutine, so
// commands run strictly in submission order no matter how many callers
// submit. Callers block on a per-request reply channel; cancelling the
// caller's context releases the caller, and the same context aborts the
// running command inside the wrapped executor.
type SerialExecutor struct {
	inner    Executor
	requests chan serialRequest
}

type serialRequest struct {
	ctx   context.Context
	spec  Spec
	reply chan serialReply
}

type serialReply struct {
	result *Result
	err    error
}

// NewSerialExecutor wraps inner and starts the worker
func NewSerialExecutor(inner Executor) *SerialExecutor {
	s := &SerialExecutor{
		inner:    inner,
		requests: make(chan serialRequest),
	}
	go s.worker()
	return s
}

// Execute implements Executor. It must not be called after Close.
func (s *SerialExecutor) Execute(ctx context.Context, spec Spec) (*Result, error) {
	reply := make(chan serialReply, 1)
	select {
	case s.requests <- serialRequest{ctx: ctx, spec: spec, reply: reply}:
	case <-ctx.Done():
		return nil, fmt.Errorf("command %v not submitted: %w", spec.Argv, ctx.Err())
	}

	select {
	case r := <-reply:
		return r.result, r.err
	case <-ctx.Done():
		// The worker is still running the command; the shared context
		// aborts it there. The reply channel is buffered, so the worker
		// never blocks on an abandoned request.
		return nil, fmt.Errorf("command %v abandoned: %w", spec.Argv, ctx.Err())
	}
}

// Close stops the worker once in-flight work finishes
func (s *SerialExecutor) Close() error {
	close(s.requests)
	return nil
}

func (s *SerialExecutor) worker() {
	for req := range s.requests {
		result, err := s.inner.Execute(req.ctx, req.spec)
		req.reply <- serialReply{result: result, err: err}
	}
}
