// Package config loads flatten's settings from the config file, FLATTEN_
// environment variables and command-line flags, in increasing precedence.
package config

// Default configuration values for flatten.
const (
	// DefaultPath is the directory flattened when none is given.
	DefaultPath = "."

	// DefaultOutput is the preview format.
	DefaultOutput = "pretty"

	// DefaultLogLevel is the file log level.
	DefaultLogLevel = "info"

	// DefaultLogMaxSize is the size at which the log file is rotated.
	DefaultLogMaxSize = "10MB"

	// DefaultLogMaxAge is the number of days rotated logs are kept.
	DefaultLogMaxAge = 30

	// DefaultLogMaxBackups is the number of rotated logs kept.
	DefaultLogMaxBackups = 5

	// EnvPrefix prefixes every environment variable, e.g. FLATTEN_TRASH.
	EnvPrefix = "FLATTEN"

	// AppName names the config and state directories.
	AppName = "flatten"
)

// DefaultExclusions holds top-level names never touched by default.
var DefaultExclusions = []string{}

// DefaultComponents holds per-component log levels.
var DefaultComponents = map[string]string{
	"scanner": "info",
	"plan":    "info",
	"apply":   "info",
}
