// Package shell implements the interactive azdoctl REPL.
//
// The shell wraps a connection.Manager and makes the in-process session
// cache user-visible: the first connect performs the full token exchange and
// organization probe, later connects against the same identity report
// "reused" without touching the network, and disconnect clears the slot.
//
// Identity is re-resolved on every connect command (flags from the invoking
// command, then environment, then config file) because the manager consumes
// the client secret on each call.
//
// The loop is built on chzyer/readline with persistent history, tab
// completion, and the usual Ctrl+C / Ctrl+D handling.
package shell
