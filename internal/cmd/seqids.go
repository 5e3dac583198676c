package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ParseSeqIDFile reads a line-oriented file of SEQ IDs and returns the list
// of IDs. Trailing whitespace is trimmed and blank lines are skipped; no
// other validation is applied, the resolver compares IDs exactly as given.
func ParseSeqIDFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SEQ ID file: %w", err)
	}
	defer f.Close()

	var seqIDs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line != "" {
			seqIDs = append(seqIDs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read SEQ ID file: %w", err)
	}

	return seqIDs, nil
}
