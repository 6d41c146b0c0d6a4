// Package logging provides a structured logging system for azdoctl with
// unified log handling and level filtering.
//
// This package implements a logging system built on Go's standard slog package,
// providing consistent logging behavior with structured output and level filtering.
//
// # Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// # Usage Examples
//
//	import "azdoctl/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("Connection", "Session established for %s", orgName)
//	logging.Debug("OAuth", "Requesting token from %s", endpoint)
//	logging.Warn("Store", "Cached session expired, clearing slot")
//	logging.Error("Validate", err, "Organization probe failed")
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Connection**: Session establishment and cache decisions
//   - **OAuth**: Token endpoint requests and responses
//   - **Validate**: Organization reachability probes
//   - **Store**: Session cache writes, reads, and self-healing
//   - **Config**: Configuration loading and identity resolution
//   - **Vars**: Variable flattening and export
//   - **Shell**: Interactive session commands
//
// # Credential Hygiene
//
// Client secrets and access tokens must never reach this package. Callers
// log identifiers through TruncateID and rely on the connection package's
// Secret type to redact anything that would otherwise stringify. There is
// no scrubbing layer here; the rule is that sensitive values are not
// passed in at all.
//
// # Thread Safety
//
// The logging system is fully thread-safe:
//   - Safe concurrent logging from multiple goroutines
//   - Level filtering at handler level, no allocation for filtered messages
package logging
