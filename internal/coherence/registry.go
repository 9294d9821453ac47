package coherence

import "strings"

// Factory constructs a fresh Protocol instance. Every cache gets its own
// instance since a protocol implementation here is stateless and holds
// no per-cache fields, but the registry still mints one per lookup to
// keep that an implementation detail rather than a contract.
type Factory func() Protocol

// registry is built once at package init from the fixed set of
// protocols this simulator knows about. It is not mutated afterwards, so
// unlike the original's static-constructor map there is no
// cross-translation-unit ordering hazard (spec.md §9's DESIGN NOTES).
var registry = map[string]Factory{
	"msi":          func() Protocol { return NewMSI() },
	"msiupgr":      func() Protocol { return NewMSIUpgrade() },
	"mesi":         func() Protocol { return NewMESI() },
	"moesi":        func() Protocol { return NewMOESI() },
	"dragon":       func() Protocol { return NewDragon() },
	"writethrough": func() Protocol { return NewWriteThrough() },
}

// Lookup resolves a protocol name case-insensitively, returning the
// matching factory and whether one was found.
func Lookup(name string) (Factory, bool) {
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// Names returns every registered protocol name, in a fixed order
// suitable for a usage message.
func Names() []string {
	return []string{"MSI", "MSIUpgr", "MESI", "MOESI", "Dragon", "WriteThrough"}
}
