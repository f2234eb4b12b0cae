package repo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// gitCommand runs a git subcommand in dir and returns its combined output
// with surrounding whitespace trimmed. The command is cancelled when ctx is.
func gitCommand(ctx context.Context, dir, subcommand string, args ...string) (string, error) {
	if subcommand == "" {
		return "", fmt.Errorf("%w: empty git subcommand", ErrSync)
	}
	cmdArgs := append([]string{subcommand}, args...)
	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		if output != "" {
			return output, fmt.Errorf("%w: git %s: %v: %s", ErrSync, subcommand, err, output)
		}
		return output, fmt.Errorf("%w: git %s: %v", ErrSync, subcommand, err)
	}
	return output, nil
}
