// Package diagnostics collects the two kinds of non-argument-error
// conditions the simulator can run into while it runs a trace: coherence
// protocol logic errors (spec.md §7's "protocol logic error") and the
// optional timestamp-verification discrepancies (spec.md §4.4).
package diagnostics

import (
	"fmt"
	"log"
	"runtime"
	"sync/atomic"
)

var strict atomic.Bool

// SetStrict controls what happens when a coherence protocol is asked to
// handle a line state it does not model. In the default build this is a
// stderr diagnostic and the simulation continues with the line left
// untouched; in strict mode (the `--strict` CLI flag) it panics. A test
// build does not turn strict mode on by itself; it stays off until
// SetStrict(true) is called.
func SetStrict(on bool) {
	strict.Store(on)
}

// Strict reports the current strict-mode setting.
func Strict() bool {
	return strict.Load()
}

// ProtocolError describes a coherence protocol receiving a line in a
// state it does not model for the operation being invoked. It carries
// the call site so the stderr diagnostic matches spec.md §7 ("file and
// function name").
type ProtocolError struct {
	Protocol  string
	Operation string
	State     fmt.Stringer
	File      string
	Line      int
	Func      string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf(
		"%s:%d: %s: protocol %q has no %s transition for state %s",
		e.File, e.Line, e.Func, e.Protocol, e.Operation, e.State,
	)
}

// ReportProtocolError records a protocol logic error. skip is the number
// of stack frames to skip to reach the offending protocol method (pass 1
// from a direct caller). In strict mode it panics with the error; in the
// default build it logs to stderr and returns so the caller can leave the
// line in whatever state it found it.
func ReportProtocolError(skip int, protocol, operation string, state fmt.Stringer) {
	pc, file, line, _ := runtime.Caller(skip)
	fn := runtime.FuncForPC(pc)
	funcName := "unknown"
	if fn != nil {
		funcName = fn.Name()
	}

	err := &ProtocolError{
		Protocol:  protocol,
		Operation: operation,
		State:     state,
		File:      file,
		Line:      line,
		Func:      funcName,
	}

	if strict.Load() {
		panic(err)
	}

	log.Println(err)
}
