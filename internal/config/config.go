// Package config parses a cache configuration, either from CLI
// positional arguments or from one line of a configs file, following
// the six-field grammar: cache_size[unit] line_size associativity
// coherence replacer directory.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/cohesim/internal/bus"
	"github.com/sarchlab/cohesim/internal/coherence"
	"github.com/sarchlab/cohesim/internal/directory"
	"github.com/sarchlab/cohesim/internal/replacement"
)

// Argument indices, matching the original single-run argv layout
// (program name occupies index 0 and is never passed to Parse).
const (
	ArgCacheSize     = 1
	ArgLineSize      = 2
	ArgAssociativity = 3
	ArgCoherence     = 4
	ArgReplacement   = 5
	ArgDirectory     = 6
	FieldCount       = 6
)

// Argument indices for the trace-file and configs-file positions of
// each run mode, matching the original's args_single_e/args_batch_e
// layout. spec.md §7's I/O error case reuses the same packed exit code
// as an argument error, always with config_id 0.
const (
	ArgSingleTraceFile = FieldCount + 1
	ArgBatchConfigFile = 1
	ArgBatchTraceFile  = 2
)

// Config is one fully validated memory-system configuration.
type Config struct {
	ID            uint32
	CacheSize     uint32
	LineSize      uint32
	Associativity uint32
	Coherence     string
	Replacer      string
	Directory     string
}

// ParseError reports a validation failure at a specific argument of a
// specific configuration, mirroring the original's "<arg_index>@
// <config_id>: <message>" stderr convention.
type ParseError struct {
	ConfigID uint32
	ArgIndex uint32
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d@%d: %s", e.ArgIndex, e.ConfigID, e.Message)
}

// ExitCode packs ConfigID and ArgIndex into the process exit code
// convention of spec.md §7: (config_id << 3) | arg_index.
func (e *ParseError) ExitCode() int {
	return int(e.ConfigID<<3) | int(e.ArgIndex)
}

func parseErr(configID uint32, argIndex uint32, format string, args ...any) *ParseError {
	return &ParseError{ConfigID: configID, ArgIndex: argIndex, Message: fmt.Sprintf(format, args...)}
}

// IOError wraps a trace-file or configs-file I/O failure (open, stat,
// malformed size) as a *ParseError at argIndex with config_id 0, so
// cmd's Execute sees the same packed-exit-code path an argument error
// takes rather than falling through to a bare exit(1).
func IOError(argIndex uint32, err error) *ParseError {
	return &ParseError{ArgIndex: argIndex, Message: err.Error()}
}

// Parse validates exactly FieldCount positional fields into a Config.
func Parse(fields []string, configID uint32) (*Config, *ParseError) {
	if len(fields) != FieldCount {
		return nil, parseErr(configID, ArgDirectory, "expected %d arguments, got %d", FieldCount, len(fields))
	}

	cfg := &Config{ID: configID}

	cacheSize, err := parseSize(fields[ArgCacheSize-1])
	if err != nil {
		return nil, parseErr(configID, ArgCacheSize, "%v", err)
	}
	if !isPowerOfTwo(cacheSize) {
		return nil, parseErr(configID, ArgCacheSize, "cache size must be a power of 2")
	}
	cfg.CacheSize = cacheSize

	lineSize, err := parseUint32(fields[ArgLineSize-1])
	if err != nil {
		return nil, parseErr(configID, ArgLineSize, "invalid format for line size (expect positive integer)")
	}
	if !isPowerOfTwo(lineSize) {
		return nil, parseErr(configID, ArgLineSize, "line size must be a power of 2")
	}
	if lineSize > cacheSize {
		return nil, parseErr(configID, ArgLineSize, "line size cannot exceed the cache size")
	}
	cfg.LineSize = lineSize

	assoc, err := parseUint32(fields[ArgAssociativity-1])
	if err != nil {
		return nil, parseErr(configID, ArgAssociativity, "invalid format for associativity (expect positive integer)")
	}
	if !isPowerOfTwo(assoc) {
		return nil, parseErr(configID, ArgAssociativity, "associativity must be a power of 2")
	}
	if assoc*lineSize > cacheSize {
		return nil, parseErr(configID, ArgAssociativity, "associativity cannot exceed the number of lines")
	}
	cfg.Associativity = assoc

	coh := fields[ArgCoherence-1]
	if _, ok := coherence.Lookup(coh); !ok {
		return nil, parseErr(configID, ArgCoherence, "coherence protocol not found")
	}
	cfg.Coherence = coh

	rep := fields[ArgReplacement-1]
	if _, ok := replacement.Lookup(rep); !ok {
		return nil, parseErr(configID, ArgReplacement, "replacement policy not found")
	}
	cfg.Replacer = rep

	dir := fields[ArgDirectory-1]
	if _, ok := directory.Lookup(dir); !ok {
		return nil, parseErr(configID, ArgDirectory, "directory protocol not found")
	}
	cfg.Directory = dir

	return cfg, nil
}

// BusConfig resolves the registry names on cfg into a bus.Config ready
// to build the memory system this configuration names.
func (cfg *Config) BusConfig() bus.Config {
	cohFactory, _ := coherence.Lookup(cfg.Coherence)
	repFactory, _ := replacement.Lookup(cfg.Replacer)
	return bus.Config{
		CacheSize:       cfg.CacheSize,
		LineSize:        cfg.LineSize,
		Associativity:   cfg.Associativity,
		ProtocolFactory: cohFactory,
		ReplacerFactory: repFactory,
	}
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid positive integer %q", s)
	}
	return uint32(v), nil
}

// parseSize parses a positive integer with an optional trailing 'k'
// (x1024) or 'M' (x1024^2) unit suffix.
func parseSize(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid format for cache size (expect positive number of bytes)")
	}

	suffix := s[len(s)-1]
	numeric := s
	multiplier := uint64(1)
	switch suffix {
	case 'k':
		multiplier = 1024
		numeric = s[:len(s)-1]
	case 'M':
		multiplier = 1024 * 1024
		numeric = s[:len(s)-1]
	}

	v, err := strconv.ParseUint(numeric, 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid format for cache size (expect positive number of bytes)")
	}

	size := v * multiplier
	if size > 0xFFFFFFFF {
		return 0, fmt.Errorf("cache size too large")
	}
	return uint32(size), nil
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// ReadConfigsFile parses every non-blank line of a configs file using
// the same six-field grammar as Parse, numbering configurations from 1
// in file order.
func ReadConfigsFile(lines []string) ([]*Config, *ParseError) {
	configs := make([]*Config, 0, len(lines))
	configID := uint32(1)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		cfg, err := Parse(fields, configID)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
		configID++
	}
	return configs, nil
}
