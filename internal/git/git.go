package git

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// Revision returns the short commit hash of HEAD for the repository
// containing root, or "" when root is not inside a git work tree.
func Revision(root string) string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// ChangedFilesSince runs git diff and returns the paths changed between
// baseRef and the working tree, relative to the repository root.
func ChangedFilesSince(root, baseRef string) ([]string, error) {
	cmd := exec.Command("git", "diff", "--name-only", baseRef)
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return parseNameOnly(output), nil
}

func parseNameOnly(output []byte) []string {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	var files []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			files = append(files, line)
		}
	}
	return files
}
