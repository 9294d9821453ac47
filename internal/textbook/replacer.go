package textbook

import (
	"fmt"
	"io"

	"github.com/sarchlab/cohesim/internal/replacement"
)

const (
	colAccess = 8
	colVictim = 6
)

// ReplacerView drives one replacement policy against a single
// synthetic set of NLines ways, each holding at most one uppercase
// letter "tag".
type ReplacerView struct {
	name     string
	policy   replacement.Policy
	tags     [NLines]byte // 0 means the way has never been assigned a tag
	accessee byte
	victim   byte
	out      io.Writer
}

// NewReplacerView resolves name against the replacement registry and
// prints the table header and initial row.
func NewReplacerView(name string, out io.Writer) (*ReplacerView, error) {
	factory, ok := replacement.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("no replacement policy named %q", name)
	}

	v := &ReplacerView{name: name, accessee: ' ', victim: ' ', out: out}
	v.policy = factory(v, 1, NLines)

	v.printHeader()
	v.printSeparator()
	v.printRow()
	return v, nil
}

// IsAllocated implements replacement.LineStater over the single
// synthetic set.
func (v *ReplacerView) IsAllocated(setIdx, wayIdx int) bool {
	return v.tags[wayIdx] != 0
}

// Evaluate processes one command: a letter accesses that tag (a
// lowercase letter is folded to uppercase), '-' resets. It returns
// false for anything else.
func (v *ReplacerView) Evaluate(cmd string) bool {
	if len(cmd) != 1 {
		return false
	}

	if cmd[0] == '-' {
		v.reset()
		return true
	}

	tag := cmd[0]
	if tag >= 'a' && tag <= 'z' {
		tag -= 'a' - 'A'
	}
	if tag < 'A' || tag > 'Z' {
		return false
	}

	v.receiveAccess(tag)
	v.printRow()
	return true
}

// CmdFormatMessage is the usage reminder printed for an unrecognized command.
func (v *ReplacerView) CmdFormatMessage() string {
	return "Command must be a letter between 'A' and 'Z' or '-'"
}

// Close prints the table's bottom border, called on EOF or SIGINT.
func (v *ReplacerView) Close() {
	v.printSeparator()
}

func (v *ReplacerView) receiveAccess(tag byte) {
	v.accessee = tag
	v.victim = ' '

	wayIdx := -1
	for i := 0; i < NLines; i++ {
		if v.tags[i] == tag {
			wayIdx = i
			break
		}
	}

	if wayIdx == -1 {
		wayIdx = v.policy.GetVictim(0)
		if v.tags[wayIdx] != 0 {
			v.victim = v.tags[wayIdx]
		}
		v.tags[wayIdx] = tag
	}

	v.policy.Touch(0, wayIdx)
}

func (v *ReplacerView) reset() {
	v.accessee = ' '
	v.victim = ' '
	v.tags = [NLines]byte{}
	if f, ok := replacement.Lookup(v.name); ok {
		v.policy = f(v, 1, NLines)
	}

	v.printSeparator()
	v.printRow()
}

func (v *ReplacerView) printHeader() {
	tagsWidth := 2*NLines - 1
	fmt.Fprintf(v.out, "%-*s | %-*s | %-*s | %s\n",
		colAccess, "Accessed", colVictim, "Victim", tagsWidth, "Tags", "Replacer State")
}

func (v *ReplacerView) printSeparator() {
	fmt.Fprintf(v.out, "%s-+-%s-+-%s-+-%s\n",
		dashes(colAccess), dashes(colVictim), dashes(2*NLines-1), dashes(15))
}

func (v *ReplacerView) printRow() {
	fmt.Fprintf(v.out, "%-*c | %-*c | %s | %s\n",
		colAccess, v.accessee, colVictim, v.victim, v.tagsColumn(), v.policy.PrintState(0))
}

func (v *ReplacerView) tagsColumn() string {
	out := make([]byte, 0, 2*NLines-1)
	for i := 0; i < NLines; i++ {
		if i > 0 {
			out = append(out, ' ')
		}
		if v.tags[i] == 0 {
			out = append(out, '-')
		} else {
			out = append(out, v.tags[i])
		}
	}
	return string(out)
}

func dashes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '-'
	}
	return string(b)
}
