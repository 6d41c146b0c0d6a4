package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"azdoctl/internal/cli"
	"azdoctl/internal/connection"
	"azdoctl/internal/vars"
)

// errExit signals the REPL loop to terminate.
var errExit = errors.New("exit")

// executeCommand parses one input line and dispatches it.
func (s *Shell) executeCommand(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	command := strings.ToLower(parts[0])
	args := parts[1:]

	if command == "?" {
		command = "help"
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch command {
	case "connect":
		return s.cmdConnect(ctx, args)
	case "status":
		return s.cmdStatus(args)
	case "disconnect":
		return s.cmdDisconnect(args)
	case "vars":
		return s.cmdVars(args)
	case "help":
		return s.cmdHelp(args)
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}
}

// cmdConnect establishes (or reuses) the session for the resolved identity.
func (s *Shell) cmdConnect(ctx context.Context, args []string) error {
	force := false
	for _, arg := range args {
		switch arg {
		case "--force", "-f":
			force = true
		default:
			return fmt.Errorf("unknown argument: %s (usage: connect [--force])", arg)
		}
	}

	identity := s.identity()

	summary, err := s.manager.Connect(ctx, identity, force)
	if err != nil {
		return err
	}

	switch summary.Status {
	case connection.StatusReused:
		s.printer.Success("Reusing cached session for %s (expires %s)",
			summary.OrganizationName, cli.FormatExpiryWithDirection(summary.TokenExpiry))
	default:
		s.printer.Success("Connected to %s (%d projects visible)",
			summary.OrganizationName, summary.ResourceCount)
	}

	s.setOrgName(summary.OrganizationName)
	return nil
}

// cmdStatus prints the session cached in this process.
func (s *Shell) cmdStatus(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("status takes no arguments")
	}

	session, ok := s.manager.Session()
	if !ok {
		s.printer.Println("Not connected. Run 'connect' to establish a session.")
		return nil
	}

	summary := session.Summarize(connection.StatusConnected)
	cli.RenderSummary(s.printer.Out, summary, connection.PeekClaims(session.AccessToken))
	return nil
}

// cmdDisconnect clears the cached session. Idempotent.
func (s *Shell) cmdDisconnect(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("disconnect takes no arguments")
	}

	s.manager.ClearSession()
	s.setOrgName("")
	s.printer.Println("Disconnected.")
	return nil
}

// cmdVars loads a variable document and renders the flattened variables.
func (s *Shell) cmdVars(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: vars <file>")
	}

	doc, err := vars.Load(args[0])
	if err != nil {
		return err
	}

	variables := vars.Flatten(doc, vars.Options{})
	if len(variables) == 0 {
		s.printer.Println("No variables found.")
		return nil
	}

	cli.RenderVariables(s.printer.Out, variables)
	return nil
}

// cmdHelp lists the available commands.
func (s *Shell) cmdHelp(_ []string) error {
	s.printer.Println(`Available commands:
  connect [--force]   Establish a session (or reuse the cached one)
  status              Show the session cached in this process
  disconnect          Clear the cached session
  vars <file>         Flatten a JSON/JSONC/YAML file and list its variables
  help, ?             Show this help
  exit, quit          Leave the shell`)
	return nil
}
