// Package config provides configuration management and identity resolution
// for azdoctl.
//
// Configuration is loaded from a single YAML file. The default location is
// ~/.config/azdoctl/config.yaml, overridable with the --config-path flag.
// A missing file is not an error: the loader falls back to empty defaults
// so the CLI works with flags and environment variables alone.
//
// # Identity Resolution
//
// Connection inputs are resolved per field from an ordered list of named
// providers, first non-empty answer wins:
//
//  1. explicit command-line flags
//  2. AZDO_* environment variables
//  3. the config file
//
// Each resolved field records its winning provider in the identity's
// provenance map, so the session can report where its inputs came from.
// The client secret is the exception: it resolves from flags and the
// environment only, never from the config file, and the file's schema has
// no place to put one.
package config
