// Package vars flattens structured configuration documents into named
// variables and exports them to a chosen target.
//
// A document is loaded from JSON, JSONC (JSON with comments and trailing
// commas), or YAML and must have an object at the top level. The nested
// structure is flattened depth-first into VARIABLE=VALUE pairs whose names
// join the key path with a configurable separator, with array elements
// addressed by index.
//
// # Secret Marking
//
// Variables whose names match a set of glob patterns (by default *secret*,
// *password* and *token*, case-insensitive) are flagged as secret. The
// pipeline target marks them issecret=true so Azure Pipelines masks them in
// logs, and the env target redacts their values when echoing what was set.
//
// # Export Targets
//
// Flattened variables can be written as Azure Pipelines logging commands
// (pipeline), dotenv lines (dotenv), process environment variables (env), a
// flat JSON object (json), or through a user-supplied text/template with the
// sprig function map (template).
//
// # Watch Mode
//
// Watcher monitors the source file with fsnotify, debounces rapid changes,
// and falls back to modification-time polling when fsnotify is unavailable.
package vars
