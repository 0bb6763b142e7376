package resolve

import "runtime"

const (
	// DefaultMaxCandidates caps how many candidate names a diagnostic carries.
	DefaultMaxCandidates = 3
	// DefaultMaxDepth caps provider/accessor recursion before a cycle is assumed.
	DefaultMaxDepth = 16
)

// Config tunes resolution. The zero value is not usable; use DefaultConfig.
type Config struct {
	// MaxCandidates caps candidate lists on ambiguity/missing diagnostics.
	MaxCandidates int
	// Parallelism bounds how many contexts resolve concurrently.
	// Results are merged in declaration order, so the outcome is identical
	// at any parallelism level.
	Parallelism int
	// MaxDepth bounds provider and accessor recursion depth.
	MaxDepth int
}

// DefaultConfig returns the standard resolution configuration.
func DefaultConfig() Config {
	return Config{
		MaxCandidates: DefaultMaxCandidates,
		Parallelism:   runtime.NumCPU(),
		MaxDepth:      DefaultMaxDepth,
	}
}
