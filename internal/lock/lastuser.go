package lock

import (
	"fmt"
	"os/exec"
	"strings"
)

// lastLoggedInUserPipeline derives the most frequent login-record user
// from the system's login history.
const lastLoggedInUserPipeline = "last | awk '{print $1}' | sort | uniq -c | sort -nr"

// runShellPipeline abstracts the exec.Command call so tests can
// substitute a fake "last" history without needing a real utmp.
var runShellPipeline = func() ([]byte, error) {
	return exec.Command("sh", "-c", lastLoggedInUserPipeline).Output()
}

// LastLoggedInUser runs the pipeline, takes the first (most frequent)
// line, and pulls the username out of its second whitespace-delimited
// field (the first is uniq -c's count column).
func LastLoggedInUser() (string, error) {
	out, err := runShellPipeline()
	if err != nil {
		return "", fmt.Errorf("lock: last-user pipeline: %w", err)
	}
	return parseLastUser(string(out))
}

func parseLastUser(output string) (string, error) {
	lines := strings.Split(output, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return "", fmt.Errorf("lock: last-user pipeline produced no output")
	}
	fields := strings.Fields(lines[0])
	if len(fields) < 2 {
		return "", fmt.Errorf("lock: unexpected last-user pipeline output %q", lines[0])
	}
	return fields[1], nil
}
