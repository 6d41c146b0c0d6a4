package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"azdoctl/internal/cli"
	"azdoctl/internal/connection"
	"azdoctl/pkg/logging"
	pkgstrings "azdoctl/pkg/strings"
)

// Prompt characters with ASCII fallbacks for terminals without unicode.
const (
	promptPrefix         = "azdoctl"
	promptChevronUnicode = "»"
	promptChevronASCII   = ">"
)

// maxOrgNameLength is the maximum length for organization names in the
// prompt. Longer names are truncated with an ellipsis.
const maxOrgNameLength = 24

// commandTimeout bounds a single REPL command, long enough for the token
// exchange and organization probe over a slow link.
const commandTimeout = 2 * time.Minute

// IdentityFunc resolves a fresh connection identity. It is called on every
// connect command because the manager consumes the secret per call.
type IdentityFunc func() connection.Identity

// Shell is the interactive azdoctl REPL.
type Shell struct {
	manager  *connection.Manager
	identity IdentityFunc
	printer  *cli.Printer

	rl         *readline.Instance
	useUnicode bool

	mu      sync.RWMutex
	orgName string // organization shown in the prompt, empty when disconnected
}

// New creates a shell around the given manager. identity is invoked for
// every connect command; printer receives all user-facing output.
func New(manager *connection.Manager, identity IdentityFunc, printer *cli.Printer) *Shell {
	return &Shell{
		manager:    manager,
		identity:   identity,
		printer:    printer,
		useUnicode: detectUnicodeSupport(),
	}
}

// detectUnicodeSupport checks if the terminal likely supports unicode characters.
func detectUnicodeSupport() bool {
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return false
	}

	for _, v := range []string{os.Getenv("LANG"), os.Getenv("LC_ALL")} {
		lower := strings.ToLower(v)
		if strings.Contains(lower, "utf-8") || strings.Contains(lower, "utf8") {
			return true
		}
	}

	return true
}

// buildPrompt creates the REPL prompt. Format examples:
//   - "azdoctl » "          - not connected
//   - "azdoctl acme » "     - connected to the acme organization
func (s *Shell) buildPrompt() string {
	s.mu.RLock()
	org := s.orgName
	useUnicode := s.useUnicode
	s.mu.RUnlock()

	chevron := promptChevronASCII
	if useUnicode {
		chevron = promptChevronUnicode
	}

	parts := []string{promptPrefix}
	if org != "" {
		parts = append(parts, truncateOrgName(org))
	}
	parts = append(parts, chevron)

	return strings.Join(parts, " ") + " "
}

// truncateOrgName shortens long organization names for the prompt.
func truncateOrgName(name string) string {
	return pkgstrings.Truncate(name, maxOrgNameLength)
}

// setOrgName records the connected organization and refreshes the prompt.
func (s *Shell) setOrgName(name string) {
	s.mu.Lock()
	s.orgName = name
	s.mu.Unlock()

	if s.rl != nil {
		s.rl.SetPrompt(s.buildPrompt())
	}
}

// createCompleter builds the static tab completion tree.
func (s *Shell) createCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("connect",
			readline.PcItem("--force"),
		),
		readline.PcItem("status"),
		readline.PcItem("disconnect"),
		readline.PcItem("vars"),
		readline.PcItem("help"),
		readline.PcItem("?"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

// filterInput filters input characters for readline.
func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// Run starts the REPL and processes commands until exit, Ctrl+D, or context
// cancellation.
func (s *Shell) Run(ctx context.Context) error {
	historyFile := filepath.Join(os.TempDir(), ".azdoctl_history")

	config := &readline.Config{
		Prompt:          s.buildPrompt(),
		HistoryFile:     historyFile,
		AutoComplete:    s.createCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()
	s.rl = rl

	// Reflect an already-cached session in the prompt, e.g. when the shell
	// starts after a connect in the same process.
	if session, ok := s.manager.Session(); ok {
		s.setOrgName(session.OrganizationName)
	}

	s.printer.Println("azdoctl shell. Type 'help' for available commands. Use TAB for completion.")
	s.printer.Println()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("Shell", "Shutting down")
			return nil
		default:
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			s.printer.Println("Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := s.executeCommand(input); err != nil {
			if err == errExit {
				s.printer.Println("Goodbye!")
				return nil
			}
			s.printer.Errorf("%s\n", cli.FormatError(err))
		}

		s.printer.Println()
	}
}
