package discovery

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// IsInteractive returns true if stdin is a terminal. Piped or redirected
// input disables prompting, so discovery can run in scripts.
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// PromptResult represents the user's choice when prompted for a rule.
type PromptResult int

const (
	// PromptAccept indicates the user accepted this rule.
	PromptAccept PromptResult = iota
	// PromptReject indicates the user rejected this rule.
	PromptReject
	// PromptAcceptAll indicates the user wants to accept all remaining rules.
	PromptAcceptAll
	// PromptRejectAll indicates the user wants to reject all remaining rules.
	PromptRejectAll
	// PromptQuit indicates the user wants to quit without processing remaining rules.
	PromptQuit
)

// InteractivePrompter handles user prompts for rule selection.
type InteractivePrompter struct {
	reader io.Reader
	writer io.Writer
}

// NewInteractivePrompter creates a new InteractivePrompter with the given
// reader and writer. Use os.Stdin and os.Stdout for normal operation, or
// buffers for testing.
func NewInteractivePrompter(reader io.Reader, writer io.Writer) *InteractivePrompter {
	return &InteractivePrompter{
		reader: reader,
		writer: writer,
	}
}

// PromptForRule asks the user whether to accept a discovered artist rule.
func (p *InteractivePrompter) PromptForRule(rule DiscoveredRule) (PromptResult, error) {
	fmt.Fprintf(p.writer, "\nDiscovered artist:\n")
	fmt.Fprintf(p.writer, "  Artist: %s\n", rule.Artist)
	fmt.Fprintf(p.writer, "  Library: %s\n", rule.TargetDirectory)

	fmt.Fprintf(p.writer, "\nAccept this rule? (y)es, (n)o, (a)ccept all, (r)eject all, (q)uit: ")

	scanner := bufio.NewScanner(p.reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return PromptQuit, fmt.Errorf("error reading input: %w", err)
		}
		// EOF, treat as quit
		return PromptQuit, nil
	}

	input := strings.TrimSpace(strings.ToLower(scanner.Text()))

	switch input {
	case "y", "yes":
		return PromptAccept, nil
	case "n", "no":
		return PromptReject, nil
	case "a", "accept all":
		return PromptAcceptAll, nil
	case "r", "reject all":
		return PromptRejectAll, nil
	case "q", "quit":
		return PromptQuit, nil
	default:
		// Unrecognized input rejects rather than accepts.
		fmt.Fprintf(p.writer, "Invalid input '%s', treating as reject.\n", input)
		return PromptReject, nil
	}
}
