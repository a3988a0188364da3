// Package executortest provides a scripted Executor fake for tests that
// exercise command-issuing components without spawning processes.
package executortest

import (
	"context"
	"strings"

	"github.com/ztgui/ztadmin/internal/executor"
)

// Response is the scripted outcome for a command. A zero ExitCode yields a
// successful Result; a non-zero one yields a *executor.ProcessError. Err,
// when set, is returned as-is and wins over everything else.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Fake is a scripted executor.Executor. Responses are matched by the joined
// argv prefix; the first match wins. Unmatched commands succeed with empty
// output unless Strict is set.
type Fake struct {
	// Calls records every executed spec in order
	Calls []executor.Spec

	// Strict makes unmatched commands fail the lookup with ErrUnmatched
	Strict bool

	scripts []script
}

type script struct {
	prefix   string
	response Response
	uses     int
	maxUses  int
}

// On scripts a response for any command whose joined argv starts with the
// joined prefix. Later calls to On stack; earlier registrations win.
func (f *Fake) On(prefix []string, response Response) {
	f.scripts = append(f.scripts, script{
		prefix:   strings.Join(prefix, " "),
		response: response,
	})
}

// OnOnce scripts a response consumed by a single matching call, allowing a
// command to fail first and succeed later.
func (f *Fake) OnOnce(prefix []string, response Response) {
	f.scripts = append(f.scripts, script{
		prefix:   strings.Join(prefix, " "),
		response: response,
		maxUses:  1,
	})
}

// SpawnCount returns how many commands were executed
func (f *Fake) SpawnCount() int {
	return len(f.Calls)
}

// Execute implements executor.Executor
func (f *Fake) Execute(_ context.Context, spec executor.Spec) (*executor.Result, error) {
	f.Calls = append(f.Calls, spec)

	joined := strings.Join(spec.Argv, " ")
	for i := range f.scripts {
		s := &f.scripts[i]
		if s.maxUses > 0 && s.uses >= s.maxUses {
			continue
		}
		if !strings.HasPrefix(joined, s.prefix) {
			continue
		}
		s.uses++
		return f.respond(spec, s.response)
	}

	if f.Strict {
		return nil, &executor.ProcessError{Argv: spec.Argv, ExitCode: 1, Output: "unmatched command in fake"}
	}
	return &executor.Result{}, nil
}

func (f *Fake) respond(spec executor.Spec, r Response) (*executor.Result, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.ExitCode != 0 {
		return nil, &executor.ProcessError{
			Argv:     spec.Argv,
			ExitCode: r.ExitCode,
			Output:   r.Stdout,
		}
	}
	return &executor.Result{Stdout: r.Stdout, Stderr: r.Stderr}, nil
}
