package textbook

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sarchlab/cohesim/internal/coherence"
	"github.com/sarchlab/cohesim/internal/replacement"
)

// view is the common command surface both CoherenceView and
// ReplacerView expose to the REPL driver.
type view interface {
	Evaluate(cmd string) bool
	CmdFormatMessage() string
	Close()
}

// Resolve builds the view named by name, checking the coherence
// registry first and falling back to the replacement registry, per
// spec.md §6's "name resolves case-insensitively against the coherence
// registry first, else the replacement registry".
func Resolve(name string, out io.Writer) (view, error) {
	if _, ok := coherence.Lookup(name); ok {
		return NewCoherenceView(name, out)
	}
	if _, ok := replacement.Lookup(name); ok {
		return NewReplacerView(name, out)
	}
	return nil, fmt.Errorf("no coherence protocol or replacement policy named %q", name)
}

// Run drives the interactive REPL over in, writing the table to out
// and usage errors to errOut, until ctx is cancelled (SIGINT) or in
// reaches EOF. It always closes the table border before returning.
func Run(ctx context.Context, name string, in io.Reader, out, errOut io.Writer) error {
	v, err := Resolve(name, out)
	if err != nil {
		return err
	}
	defer v.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	lineNum := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			lineNum++
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if !v.Evaluate(line) {
				fmt.Fprintf(errOut, "Line %d: %s\n", lineNum, v.CmdFormatMessage())
			}
		}
	}
}

// NotifyInterrupt is a thin wrapper around signal.NotifyContext
// scoped to SIGINT, matching spec.md §5's "SIGINT handling for
// textbook mode only".
func NotifyInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT)
}
