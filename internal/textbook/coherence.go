// Package textbook implements the two interactive REPL views described
// by spec.md §6.3: a coherence-protocol view driving N synthetic cache
// lines directly with processor/evict commands, and a replacement-
// policy view driving a single synthetic set with tag accesses. Both
// print a running table of what happened after each command.
package textbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/cohesim/internal/cacheline"
	"github.com/sarchlab/cohesim/internal/coherence"
)

// NLines is the number of synthetic cache lines the coherence view
// drives, matching spec.md §6's N_TEXTBOOK_LINES.
const NLines = 5

// allocatedTag is the dummy tag every synthetic line gets on its first
// access; only its zero-ness is ever inspected, so any nonzero value
// would do.
const allocatedTag cacheline.Tag = 0x55555555

const (
	colOp     = 2
	colEvent  = 16
	colSource = 11
)

type busEvent struct {
	label  string
	issuer int // index into lines[], or NLines for "Main Memory"
}

// CoherenceView drives one coherence protocol against NLines synthetic
// lines, each standing in for a different cache on the bus.
type CoherenceView struct {
	name     string
	protocol coherence.Protocol
	lines    [NLines]cacheline.Line
	events   []busEvent
	cmdLabel string
	cmdLine  int
	out      io.Writer
}

// NewCoherenceView resolves name against the coherence registry and
// prints the table header and initial (all-Invalid) row.
func NewCoherenceView(name string, out io.Writer) (*CoherenceView, error) {
	factory, ok := coherence.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no coherence protocol named %q", name)
	}

	v := &CoherenceView{name: name, protocol: factory(), out: out}
	v.printHeader()
	v.printSeparator()
	v.printRow()
	return v, nil
}

// Evaluate processes one command line. It returns false if cmd is not
// a recognized command, in which case the caller should print
// CmdFormatMessage.
func (v *CoherenceView) Evaluate(cmd string) bool {
	if len(cmd) == 1 && (cmd[0] == 'x' || cmd[0] == 'X') {
		v.reset()
		return true
	}

	if len(cmd) == 2 && cmd[1] >= '1' && cmd[1] <= byte('0'+NLines) {
		idx := int(cmd[1] - '1')
		switch cmd[0] {
		case 'e', 'E':
			v.receiveEvict(idx)
		case 'r', 'R':
			v.receivePrRd(idx)
		case 'w', 'W':
			v.receivePrWr(idx)
		default:
			return false
		}
		v.printRow()
		return true
	}

	return false
}

// CmdFormatMessage is the usage reminder printed for an unrecognized command.
func (v *CoherenceView) CmdFormatMessage() string {
	return fmt.Sprintf("Command must be 'E', 'R', or 'W' followed by a number between 1 and %d, or 'X'", NLines)
}

// Close prints the table's bottom border, called on EOF or SIGINT.
func (v *CoherenceView) Close() {
	v.printSeparator()
}

// IssueBusMsg implements coherence.BusIssuer: it broadcasts msg to
// every other synthetic line, recording each reaction as a row event.
func (v *CoherenceView) IssueBusMsg(msg coherence.BusMsg) bool {
	v.events = append(v.events, busEvent{msg.String(), v.cmdLine})

	var copiesExist, flushed bool
	switch msg {
	case coherence.BusRead, coherence.BusReadX, coherence.BusUpdate, coherence.BusUpgrade, coherence.BusWrite:
		for i := 0; i < NLines; i++ {
			if i == v.cmdLine || v.lines[i].State == cacheline.Invalid {
				continue
			}
			if v.snoop(msg, i) {
				v.events = append(v.events, busEvent{"Line Flush", i})
				flushed = true
			}
			copiesExist = true
		}
	}

	if msg == coherence.BusRead || msg == coherence.BusReadX {
		if flushed {
			v.events = append(v.events, busEvent{"Cache to Cache", v.cmdLine})
		} else {
			v.events = append(v.events, busEvent{"Line Fetch", NLines})
		}
	}

	return copiesExist
}

func (v *CoherenceView) snoop(msg coherence.BusMsg, i int) bool {
	switch msg {
	case coherence.BusRead:
		prev := v.lines[i].State
		flushed := v.protocol.OnBusRd(&v.lines[i])
		if !v.protocol.DoesDirtySharing() && v.protocol.IsWriteBackNeeded(prev) {
			v.events = append(v.events, busEvent{"Write Back", i})
		}
		return flushed
	case coherence.BusReadX:
		return v.protocol.OnBusRdX(&v.lines[i])
	case coherence.BusUpdate:
		return v.protocol.OnBusUpdt(&v.lines[i])
	case coherence.BusUpgrade:
		return v.protocol.OnBusUpgr(&v.lines[i])
	case coherence.BusWrite:
		return v.protocol.OnBusWr(&v.lines[i])
	default:
		return false
	}
}

func (v *CoherenceView) allocated(i int) bool {
	return v.lines[i].Tag != 0
}

func (v *CoherenceView) receiveEvict(i int) {
	v.events = nil
	v.cmdLine = i
	v.cmdLabel = fmt.Sprintf("E%d", i+1)

	if v.allocated(i) && v.protocol.IsWriteBackNeeded(v.lines[i].State) {
		v.events = append(v.events, busEvent{"Line Flush", i})
		v.events = append(v.events, busEvent{"Write Back", i})
	}
	v.lines[i] = cacheline.Line{}
}

func (v *CoherenceView) receivePrRd(i int) {
	v.events = nil
	v.cmdLine = i
	v.cmdLabel = fmt.Sprintf("R%d", i+1)

	if !v.allocated(i) {
		v.lines[i] = cacheline.Line{Tag: allocatedTag, State: cacheline.Invalid}
	}
	v.protocol.OnPrRd(v, &v.lines[i])
}

func (v *CoherenceView) receivePrWr(i int) {
	v.events = nil
	v.cmdLine = i
	v.cmdLabel = fmt.Sprintf("W%d", i+1)

	if v.protocol.DoesWriteNoAllocate() {
		v.events = append(v.events, busEvent{"Write Memory", i})
	} else if !v.allocated(i) {
		v.lines[i] = cacheline.Line{Tag: allocatedTag, State: cacheline.Invalid}
	}

	var line *cacheline.Line
	if v.allocated(i) {
		line = &v.lines[i]
	}
	v.protocol.OnPrWr(v, line)
}

func (v *CoherenceView) reset() {
	v.events = nil
	v.cmdLabel = ""
	v.cmdLine = 0
	if f, ok := coherence.Lookup(v.name); ok {
		v.protocol = f()
	}
	v.lines = [NLines]cacheline.Line{}

	v.printSeparator()
	v.printRow()
}

func (v *CoherenceView) printHeader() {
	statesWidth := 3*NLines - 1
	fmt.Fprintf(v.out, "%-*s | %-*s | %-*s | %-*s\n",
		colOp, "OP", colEvent, "Bus Event", colSource, "Data Source", statesWidth, "States")
}

func (v *CoherenceView) printSeparator() {
	statesWidth := 3*NLines - 1
	fmt.Fprintf(v.out, "%s-+-%s-+-%s-+-%s\n",
		strings.Repeat("-", colOp), strings.Repeat("-", colEvent),
		strings.Repeat("-", colSource), strings.Repeat("-", statesWidth))
}

func (v *CoherenceView) printRow() {
	op := fmt.Sprintf("%-*s", colOp, v.cmdLabel)

	if len(v.events) == 0 {
		fmt.Fprintf(v.out, "%s | %-*s | %-*s | %s\n", op, colEvent, "", colSource, "", v.statesColumn())
		return
	}

	for i, ev := range v.events {
		source := ""
		switch {
		case ev.issuer == NLines:
			source = "Main Memory"
		case ev.issuer != v.cmdLine:
			source = fmt.Sprintf("P%d", ev.issuer+1)
		}

		prefix := op
		if i > 0 {
			prefix = fmt.Sprintf("%-*s", colOp, "")
		}

		if i == len(v.events)-1 {
			fmt.Fprintf(v.out, "%s | %-*s | %-*s | %s\n", prefix, colEvent, ev.label, colSource, source, v.statesColumn())
		} else {
			fmt.Fprintf(v.out, "%s | %-*s | %-*s |\n", prefix, colEvent, ev.label, colSource, source)
		}
	}
}

func (v *CoherenceView) statesColumn() string {
	var b strings.Builder
	for i := 0; i < NLines; i++ {
		if v.allocated(i) {
			fmt.Fprintf(&b, " %-2s", v.lines[i].State.String())
		} else {
			b.WriteString(" - ")
		}
	}
	return b.String()
}
