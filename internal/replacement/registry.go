package replacement

import "strings"

// registry mirrors coherence.registry's shape: a fixed map of
// lowercase policy names to factories, built once at init time.
var registry = map[string]Factory{
	"lru":    NewLRU,
	"fifo":   NewFIFO,
	"random": NewRandom,
	"rr":     NewRandom,
}

// Lookup resolves a replacement policy name case-insensitively.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// Names returns every registered policy name, in a fixed order
// suitable for a usage message.
func Names() []string {
	return []string{"LRU", "FIFO", "Random"}
}
