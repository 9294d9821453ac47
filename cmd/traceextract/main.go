// Command traceextract sits in a pipe downstream of a full-system
// simulator and converts its textual memory-access log into the
// packed binary trace format cohesim consumes, mirroring
// tools/extractor.c. Lines it doesn't recognize as a memory access
// pass straight through to stdout unchanged, so it can be inserted
// into an existing log pipeline without losing anything else the
// upstream simulator prints.
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cohesim/internal/trace"
)

var rootCmd = &cobra.Command{
	Use:   "traceextract <path>",
	Short: "Convert a textual memory-access log on stdin into a binary trace file.",
	Long: `traceextract reads "<cpu> <op> <addr>" lines from stdin, where op is
'i' (instruction fetch), 'r' (read), or 'w' (write) and addr is hexadecimal.
Reads and writes are appended to <path>.bin in cohesim's packed trace format;
every operation, including instruction fetches, is tallied per CPU into
<path>.stat. Lines that don't match this grammar are echoed to stdout
unchanged.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type perCPUCounts struct {
	ifetch, reads, writes map[int]uint64
}

func run(cmd *cobra.Command, args []string) error {
	base := args[0]

	traceFile, err := os.Create(base + ".bin")
	if err != nil {
		return fmt.Errorf("couldn't open trace file for writing: %w", err)
	}
	defer traceFile.Close()
	traceWriter := bufio.NewWriter(traceFile)

	statFile, err := os.Create(base + ".stat")
	if err != nil {
		return fmt.Errorf("couldn't open trace statistics file for writing: %w", err)
	}
	defer statFile.Close()

	start := time.Now()
	counts := perCPUCounts{ifetch: map[int]uint64{}, reads: map[int]uint64{}, writes: map[int]uint64{}}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := cmd.OutOrStdout()

	for scanner.Scan() {
		line := scanner.Text()

		var cpu int
		var op rune
		var addr int
		if n, _ := fmt.Sscanf(line, "%d\t%c\t%x", &cpu, &op, &addr); n != 3 {
			fmt.Fprintln(out, line)
			continue
		}

		switch op {
		case 'i':
			counts.ifetch[cpu]++
			continue
		case 'r':
			counts.reads[cpu]++
		case 'w':
			counts.writes[cpu]++
		default:
			fmt.Fprintln(out, line)
			continue
		}

		if _, err := traceWriter.Write(trace.Encode(trace.Record{
			CPU:     cpu,
			Write:   op == 'w',
			Address: uint32(addr),
		})); err != nil {
			return fmt.Errorf("writing trace record: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading trace log: %w", err)
	}
	if err := traceWriter.Flush(); err != nil {
		return fmt.Errorf("flushing trace file: %w", err)
	}

	writeStats(statFile, time.Since(start), counts)
	return nil
}

func writeStats(w *os.File, elapsed time.Duration, counts perCPUCounts) {
	fmt.Fprint(w, "Time to generate trace file: ")
	h := int(elapsed.Hours())
	m := int(elapsed.Minutes()) % 60
	s := int(elapsed.Seconds()) % 60
	switch {
	case h != 0:
		fmt.Fprintf(w, "%dh %dm %ds\n\n", h, m, s)
	case m != 0:
		fmt.Fprintf(w, "%dm %ds\n\n", m, s)
	default:
		fmt.Fprintf(w, "%ds\n\n", s)
	}

	cpus := observedCPUs(counts)
	if len(cpus) == 0 {
		return
	}

	fmt.Fprint(w, "CPU:     ")
	for _, cpu := range cpus {
		fmt.Fprintf(w, " %s", formatThousands(uint64(cpu)))
	}
	fmt.Fprint(w, "\nIFetches:")
	for _, cpu := range cpus {
		fmt.Fprintf(w, " %s", formatThousands(counts.ifetch[cpu]))
	}
	fmt.Fprint(w, "\nReads:   ")
	for _, cpu := range cpus {
		fmt.Fprintf(w, " %s", formatThousands(counts.reads[cpu]))
	}
	fmt.Fprint(w, "\nWrites:  ")
	for _, cpu := range cpus {
		fmt.Fprintf(w, " %s", formatThousands(counts.writes[cpu]))
	}
	fmt.Fprint(w, "\n")
}

// observedCPUs returns every CPU id that appeared in any counter, in
// ascending order. The original extractor instead iterates a
// compile-time-fixed NCPU range; observing the trace itself avoids
// baking that constant in.
func observedCPUs(counts perCPUCounts) []int {
	seen := map[int]bool{}
	for cpu := range counts.ifetch {
		seen[cpu] = true
	}
	for cpu := range counts.reads {
		seen[cpu] = true
	}
	for cpu := range counts.writes {
		seen[cpu] = true
	}
	cpus := make([]int, 0, len(seen))
	for cpu := range seen {
		cpus = append(cpus, cpu)
	}
	sort.Ints(cpus)
	return cpus
}

// formatThousands renders n with a comma every three digits, matching
// extractor.c's fprintfcomma.
func formatThousands(n uint64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var out []byte
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, s[:lead]...)
	for i := lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
