package trace

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

var (
	// logger is the logger to use for tracing.
	logger atomic.Pointer[log.Logger]

	// current is the targets that are enabled for tracing.
	current atomic.Int32
)

func init() {
	logger.Store(log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds|log.Lshortfile))
}

// Target is a tracing target.
type Target int32

const (
	// General traces general operations.
	General Target = 1 << iota

	// Store traces the subtree store.
	Store

	// Match traces the phases of the matcher.
	Match

	// Script traces edit script generation and replay.
	Script

	// History traces the repository history walker.
	History
)

var names = map[string]Target{
	"general": General,
	"store":   Store,
	"match":   Match,
	"script":  Script,
	"history": History,
}

// SetTarget sets the tracing targets.
func SetTarget(target Target) {
	current.Store(int32(target))
}

// SetLogger sets the logger to use for tracing.
func SetLogger(l *log.Logger) {
	logger.Store(l)
}

// ParseTargets parses a comma separated list of target names, "all"
// enables every target.
func ParseTargets(s string) (Target, error) {
	var t Target
	for _, name := range strings.Split(s, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "":
			continue
		case "all":
			t |= General | Store | Match | Script | History
		default:
			v, ok := names[name]
			if !ok {
				return 0, fmt.Errorf("unknown trace target %q", name)
			}
			t |= v
		}
	}

	return t, nil
}

// Enabled returns true if the target is enabled.
func (t Target) Enabled() bool {
	return int32(t)&current.Load() != 0
}

// Print prints the given message if tracing is enabled.
func (t Target) Print(args ...interface{}) {
	if t.Enabled() {
		logger.Load().Output(2, fmt.Sprint(args...)) // nolint: errcheck
	}
}

// Printf prints the given message if tracing is enabled.
func (t Target) Printf(format string, args ...interface{}) {
	if t.Enabled() {
		logger.Load().Output(2, fmt.Sprintf(format, args...)) // nolint: errcheck
	}
}
