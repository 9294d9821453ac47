// Command cohesim simulates the L1 cache coherence hierarchy of a
// shared-memory multiprocessor against a recorded trace, either as a
// single configuration, a batch of configurations run concurrently
// against the same trace, or an interactive textbook walkthrough of
// one coherence protocol or replacement policy.
package main

import "github.com/sarchlab/cohesim/cmd/cohesim/cmd"

func main() {
	cmd.Execute()
}
