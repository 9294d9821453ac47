// Package directory holds the registry of directory protocols: the
// bus-level strategies a memory system can use to keep caches
// coherent. The only protocol this simulator models is Broadcast, the
// snoopy bus implemented by internal/bus — every cache sees every bus
// message, with no point-to-point directory state.
package directory

import (
	"strings"

	"github.com/sarchlab/cohesim/internal/bus"
)

// Factory builds a memory system implementing one directory protocol.
type Factory func(cfg bus.Config) *bus.MemorySystem

var registry = map[string]Factory{
	"broadcast": bus.New,
}

// Lookup resolves name against the directory registry case-insensitively.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// Names returns every registered directory protocol name.
func Names() []string {
	return []string{"Broadcast"}
}
