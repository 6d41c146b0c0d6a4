// Package cli provides shared helpers for azdoctl's command-line surface:
// connection error classification, quiet-aware output, duration and expiry
// phrasing, and table rendering for session summaries and exported
// variables.
//
// The helpers here are presentation-only. They never touch credentials and
// receive only the redacting types the connection package exposes, so
// nothing in this package can leak a secret to a terminal or a log.
package cli
