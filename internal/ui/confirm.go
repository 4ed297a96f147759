package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm prompts for explicit approval before anything destructive runs.
// Only a literal "y" or "yes" (any case) counts as approval; every other
// input, including a read error or EOF, declines. Piped input works, so
// the gate is scriptable without being accidental.
func Confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
